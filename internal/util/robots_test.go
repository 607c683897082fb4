package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("reviewlens", 5*time.Second)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/biz/marsh-shack")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected public path to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	if checker.IsAllowed(ctx, server.URL+"/private/reviews") {
		t.Error("expected disallowed path to be blocked")
	}

	if robotsHits.Load() != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", robotsHits.Load())
	}

	checker.Clear()
	_ = checker.IsAllowed(ctx, server.URL+"/")
	if robotsHits.Load() != 2 {
		t.Errorf("expected refetch after Clear, got %d fetches", robotsHits.Load())
	}
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("reviewlens", 5*time.Second)
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("expected everything allowed without robots.txt")
	}
}

func TestRobotsChecker_Unreachable(t *testing.T) {
	checker := NewRobotsChecker("reviewlens", 100*time.Millisecond)
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/x")
	if err != nil || !allowed {
		t.Errorf("expected allow on fetch failure, got %v %v", allowed, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"reviewlens/0.1 (+https://github.com/ppiankov/reviewlens)": "reviewlens",
		"Mozilla/5.0 (X11)": "Mozilla",
		"":                  "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
