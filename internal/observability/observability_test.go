package observability_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/reviewlens/internal/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveScraped("Yelp", 3)
	observability.ObserveClassified("Pricing", "Negative")
	observability.ObserveFetch("www.yelp.com", 200, 12*time.Millisecond)
	observability.ObserveCache("hit")
	observability.ObserveSourceError("Google")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"reviewlens_reviews_scraped_total",
		"reviewlens_reviews_classified_total",
		"reviewlens_fetches_total",
		"reviewlens_fetch_duration_seconds",
		"reviewlens_cache_events_total",
		"reviewlens_source_errors_total",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("expected %s in output", name)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLogger(observability.LogOptions{Format: "json", Out: &buf})

	l.Warn().Str("platform", "Yelp").Msg("source failed")
	l.Info().Msg("hidden below warn")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line at default level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["platform"] != "Yelp" || entry["message"] != "source failed" || entry["level"] != "warn" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestNewLogger_VerboseConsole(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLogger(observability.LogOptions{Format: "console", Verbose: true, Out: &buf})

	l.Debug().Str("url", "https://www.yelp.com/biz/x").Msg("fetching")

	out := buf.String()
	if !strings.Contains(out, "fetching") || !strings.Contains(out, "url=") {
		t.Errorf("expected console-formatted debug line, got %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console output, got JSON: %q", out)
	}
}
