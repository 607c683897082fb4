package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ppiankov/reviewlens/internal/cache"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/observability"
	"github.com/ppiankov/reviewlens/internal/util"
	"github.com/ppiankov/reviewlens/internal/worker"
	"github.com/rs/zerolog/log"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// fetchSleepFunc is replaced in tests to skip backoff delays
var fetchSleepFunc = sleepContext

// sleepContext waits for d or until ctx is done, whichever comes first
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

const (
	defaultMaxRetries = 3
	baseBackoff       = time.Second
	maxBackoff        = 30 * time.Second
	maxRedirects      = 5
	defaultMaxBytes   = 5_000_000
)

// StatusError reports a non-2xx response
type StatusError struct {
	Code       int
	Status     string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Fetcher fetches review pages with caching, robots.txt compliance,
// per-domain rate limiting and retries
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int

	cache    cache.Cache
	cacheTTL time.Duration
	robots   *util.RobotsChecker
	limiter  *worker.Limiter
	minDelay time.Duration
	maxDelay time.Duration
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithProxy routes requests through proxy
func WithProxy(proxy util.ProxyFunc) FetcherOption {
	return func(f *Fetcher) {
		if proxy == nil {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = proxy
		f.httpClient.Transport = transport
	}
}

// WithCache serves pages from c and stores fetched pages for ttl
func WithCache(c cache.Cache, ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// WithRobots checks every page against robots.txt before fetching
func WithRobots(r *util.RobotsChecker) FetcherOption {
	return func(f *Fetcher) { f.robots = r }
}

// WithLimiter waits on the per-domain limiter and a random politeness delay
// in [minDelay, maxDelay] before each network request
func WithLimiter(l *worker.Limiter, minDelay, maxDelay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
		f.minDelay = minDelay
		f.maxDelay = maxDelay
	}
}

// WithMaxRetries sets the total number of attempts for transient failures
func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, opts ...FetcherOption) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	f := &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewFetcherFromConfig builds a fetcher from configuration. noCache and
// ignoreRobots override the configured cache and robots settings.
func NewFetcherFromConfig(cfg *model.Config, noCache, ignoreRobots bool) (*Fetcher, error) {
	opts := []FetcherOption{
		WithMaxRetries(cfg.HTTP.MaxRetries),
		WithLimiter(
			worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
			cfg.RateLimiting.MinDelay, cfg.RateLimiting.MaxDelay,
		),
	}

	if len(cfg.HTTP.Proxies) > 0 {
		rotator, err := util.NewProxyRotator(cfg.HTTP.Proxies, cfg.HTTP.RotateEvery, cfg.HTTP.NoProxy)
		if err != nil {
			return nil, fmt.Errorf("proxy pool: %w", err)
		}
		opts = append(opts, WithProxy(rotator.Proxy))
	} else {
		opts = append(opts, WithProxy(util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)))
	}

	if cfg.Cache.Enabled && !noCache {
		opts = append(opts, WithCache(
			cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL),
			cfg.Cache.DiskTTL,
		))
	}

	if cfg.Robots.Respect && !ignoreRobots {
		opts = append(opts, WithRobots(util.NewRobotsChecker(util.NormalizeUserAgent(cfg.HTTP.UserAgent), cfg.HTTP.Timeout)))
	}

	return NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, opts...), nil
}

// FetchResult contains the fetched HTML and metadata
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
}

// FetchHTML returns the page HTML, consulting the cache, robots.txt and the
// rate limiter before going to the network
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	key := cache.CacheKey(rawURL)
	if f.cache != nil {
		if data, ok := f.cache.Get(key); ok {
			observability.ObserveCache("hit")
			log.Debug().Str("url", rawURL).Msg("page served from cache")
			return string(data), nil
		}
		observability.ObserveCache("miss")
	}

	extraDelay := time.Duration(0)
	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		extraDelay = crawlDelay
	}

	if f.limiter != nil {
		delay := worker.Jitter(f.minDelay, f.maxDelay)
		if extraDelay > delay {
			delay = extraDelay
		}
		if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.Set(key, []byte(result.HTML), f.cacheTTL); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("cache write failed")
		} else {
			observability.ObserveCache("set")
		}
	}
	return result.HTML, nil
}

// FetchWithRetry fetches with exponential backoff on transient failures
// (429, 5xx, transport errors)
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt, lastErr)
			log.Warn().Err(lastErr).Str("url", rawURL).Int("attempt", attempt+1).
				Dur("backoff", delay).Msg("retrying fetch")
			if err := fetchSleepFunc(ctx, delay); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", f.maxRetries, lastErr)
}

// Fetch performs a single GET of rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	host := req.URL.Host
	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		observability.ObserveFetch(host, 0, time.Since(start))
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	observability.ObserveFetch(host, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{
			Code:       resp.StatusCode,
			Status:     resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	// Read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		HTML:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// isRetryableFetchError reports whether err is worth another attempt.
// Deadline expiry of the caller's context is caught by the retry loop.
func isRetryableFetchError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	// transport failures (refused, reset, client timeout) surface as *url.Error
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// backoff doubles from baseBackoff per attempt, honouring Retry-After when
// the server sent one
func backoff(attempt int, lastErr error) time.Duration {
	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) && statusErr.RetryAfter > 0 {
		return min(statusErr.RetryAfter, maxBackoff)
	}
	d := baseBackoff << (attempt - 1)
	return min(d, maxBackoff)
}

// parseRetryAfter reads delay-seconds or an HTTP date
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
