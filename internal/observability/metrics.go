package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	ReviewsScraped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewlens", Name: "reviews_scraped_total", Help: "Reviews extracted per platform."},
		[]string{"platform"},
	)
	ReviewsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewlens", Name: "reviews_classified_total", Help: "Reviews labelled, by category and sentiment."},
		[]string{"category", "sentiment"},
	)
	SourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewlens", Name: "source_errors_total", Help: "Failed source scrapes."},
		[]string{"platform"},
	)
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewlens", Name: "fetches_total", Help: "Outbound page fetches by host and status."},
		[]string{"host", "status"},
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reviewlens", Name: "fetch_duration_seconds",
			Help:    "Outbound page fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "reviewlens", Name: "cache_events_total", Help: "Page cache hits/misses/sets."},
		[]string{"event"}, // event: hit|miss|set
	)
)

// InitRegistry registers the reviewlens collectors on a fresh registry
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ReviewsScraped, ReviewsClassified, SourceErrors, Fetches, FetchLatency, CacheEvents)
	return reg
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the listener.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func ObserveScraped(platform string, n int) {
	ReviewsScraped.WithLabelValues(platform).Add(float64(n))
}

func ObserveClassified(category, sentiment string) {
	ReviewsClassified.WithLabelValues(category, sentiment).Inc()
}

func ObserveSourceError(platform string) {
	SourceErrors.WithLabelValues(platform).Inc()
}

// ObserveFetch records one fetch attempt; status 0 means a transport error
func ObserveFetch(host string, status int, dur time.Duration) {
	Fetches.WithLabelValues(host, strconv.Itoa(status)).Inc()
	FetchLatency.WithLabelValues(host).Observe(dur.Seconds())
}

func ObserveCache(event string) { // event: hit|miss|set
	CacheEvents.WithLabelValues(event).Inc()
}
