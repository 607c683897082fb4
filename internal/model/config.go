package model

import "time"

// Config is the complete reviewlens configuration
type Config struct {
	Restaurant   string            `yaml:"restaurant" mapstructure:"restaurant"`
	Sources      []SourceConfig    `yaml:"sources" mapstructure:"sources"`
	DateRange    DateRangeConfig   `yaml:"date_range" mapstructure:"date_range"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Robots       RobotsConfig      `yaml:"robots" mapstructure:"robots"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Sentiment    SentimentConfig   `yaml:"sentiment" mapstructure:"sentiment"`
	Lexicon      LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
}

// SourceConfig points one platform at the restaurant's review page
type SourceConfig struct {
	Platform   string `yaml:"platform" mapstructure:"platform"`
	URL        string `yaml:"url" mapstructure:"url"`
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	MaxReviews int    `yaml:"max_reviews" mapstructure:"max_reviews"` // 0 = unlimited
}

// DateRangeConfig bounds review dates (YYYY-MM-DD, empty = open)
type DateRangeConfig struct {
	Start string `yaml:"start" mapstructure:"start"`
	End   string `yaml:"end" mapstructure:"end"`
}

// HTTPConfig configures page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
	Proxies      []string      `yaml:"proxies" mapstructure:"proxies"`           // Rotation pool, overrides HTTP(S)Proxy
	RotateEvery  int           `yaml:"rotate_every" mapstructure:"rotate_every"` // Requests per proxy before rotating
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	Workers         int `yaml:"workers" mapstructure:"workers"`                   // Concurrent source scrapes
	ClassifyWorkers int `yaml:"classify_workers" mapstructure:"classify_workers"` // Concurrent enrichment goroutines
}

// RateLimitConfig configures per-domain politeness
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	MinDelay          time.Duration `yaml:"min_delay" mapstructure:"min_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// CacheConfig configures the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RobotsConfig configures robots.txt compliance
type RobotsConfig struct {
	Respect bool `yaml:"respect" mapstructure:"respect"`
}

// OutputConfig configures exports
type OutputConfig struct {
	ExcelPath  string `yaml:"excel_path" mapstructure:"excel_path"`
	CSVPath    string `yaml:"csv_path" mapstructure:"csv_path"`
	ReportPath string `yaml:"report_path" mapstructure:"report_path"` // Markdown report, empty = skip
	AppendCSV  bool   `yaml:"append_csv" mapstructure:"append_csv"`
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// SentimentConfig names the sentiment policies used at each call site
type SentimentConfig struct {
	Baseline  string `yaml:"baseline" mapstructure:"baseline"`   // Applied before export
	Extractor string `yaml:"extractor" mapstructure:"extractor"` // Applied by per-platform extractors, "none" = off
}

// LexiconConfig is the user-facing form of the keyword lexicon. Omitted
// (nil) lists and unset parameters fall back to the built-in defaults; an
// explicitly empty category list disables categorization.
type LexiconConfig struct {
	Categories     []CategoryConfig `yaml:"categories" mapstructure:"categories"`
	PositiveWords  []string         `yaml:"positive_words" mapstructure:"positive_words"`
	NegativeWords  []string         `yaml:"negative_words" mapstructure:"negative_words"`
	NegationWords  []string         `yaml:"negation_words" mapstructure:"negation_words"`
	Threshold      *float64         `yaml:"threshold,omitempty" mapstructure:"threshold"`
	NegationWindow *int             `yaml:"negation_window,omitempty" mapstructure:"negation_window"`
}

// CategoryConfig is one ordered category entry
type CategoryConfig struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	Keywords []string `yaml:"keywords" mapstructure:"keywords"`
}

// DefaultConfig returns the built-in configuration. The lexicon section is
// left empty so the lexicon package supplies its defaults.
func DefaultConfig() *Config {
	return &Config{
		Restaurant: "",
		Sources: []SourceConfig{
			{Platform: string(PlatformGoogle), Enabled: true},
			{Platform: string(PlatformYelp), Enabled: true},
			{Platform: string(PlatformTripAdvisor), Enabled: true},
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "reviewlens/0.1 (+https://github.com/ppiankov/reviewlens)",
			MaxBodyBytes: 5_000_000,
			MaxRetries:   3,
			RotateEvery:  10,
		},
		Concurrency: ConcurrencyConfig{
			Workers:         3,
			ClassifyWorkers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 0.5,
			BurstSize:         1,
			MinDelay:          2 * time.Second,
			MaxDelay:          5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".reviewlens-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Robots: RobotsConfig{
			Respect: true,
		},
		Output: OutputConfig{
			ExcelPath: "data/restaurant_reviews.xlsx",
			CSVPath:   "data/restaurant_reviews.csv",
		},
		Sentiment: SentimentConfig{
			Baseline:  "threshold",
			Extractor: "none",
		},
	}
}
