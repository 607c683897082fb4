package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/dates"
	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/observability"
	"github.com/ppiankov/reviewlens/internal/source"
	"github.com/ppiankov/reviewlens/internal/worker"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Pipeline orchestrates a complete scrape: fetch every source, normalize,
// filter by date, classify
type Pipeline struct {
	config     *model.Config
	registry   *source.Registry
	normalizer *source.Normalizer
	baseline   classify.Classifier
	dateRange  dates.Range
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock anchors relative review dates ("3 weeks ago") to now
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.normalizer = source.NewNormalizer(now) }
}

// New builds a pipeline. The optional extractor engine labels reviews inside
// the platform sources; the baseline engine fills whatever is left before
// export.
func New(cfg *model.Config, fetcher source.Fetcher, opts ...Option) (*Pipeline, error) {
	lex, err := lexicon.FromConfig(cfg.Lexicon)
	if err != nil {
		return nil, err
	}

	extractor, err := classify.ExtractorByName(lex, cfg.Sentiment.Extractor)
	if err != nil {
		return nil, fmt.Errorf("extractor sentiment: %w", err)
	}
	baselinePolicy, err := classify.PolicyByName(cfg.Sentiment.Baseline)
	if err != nil {
		return nil, fmt.Errorf("baseline sentiment: %w", err)
	}

	dateRange, err := dates.ParseRange(cfg.DateRange.Start, cfg.DateRange.End)
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}

	p := &Pipeline{
		config:     cfg,
		registry:   source.NewRegistry(fetcher, extractor),
		normalizer: source.NewNormalizer(nil),
		baseline:   classify.NewEngine(lex, baselinePolicy),
		dateRange:  dateRange,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Baseline returns the engine applied to every record before export
func (p *Pipeline) Baseline() classify.Classifier {
	return p.baseline
}

// SourceOutcome summarizes one source scrape
type SourceOutcome struct {
	Platform string        `json:"platform"`
	URL      string        `json:"url"`
	Reviews  int           `json:"reviews"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunResult contains every record that survived the date filter, classified
type RunResult struct {
	RunID     string               `json:"run_id"`
	Records   []model.ReviewRecord `json:"records"`
	Sources   []SourceOutcome      `json:"sources"`
	Filtered  int                  `json:"filtered"` // dropped by the date range
	StartedAt time.Time            `json:"started_at"`
	Duration  time.Duration        `json:"duration"`
}

// Failed returns the number of sources that produced an error
func (r *RunResult) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Error != "" {
			n++
		}
	}
	return n
}

// ScrapeSource fetches and normalizes the reviews of one configured source
func (p *Pipeline) ScrapeSource(ctx context.Context, cfg model.SourceConfig) ([]model.ReviewRecord, error) {
	src, platform, err := p.resolve(cfg)
	if err != nil {
		return nil, err
	}

	raws, err := src.FetchReviewElements(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxReviews > 0 && len(raws) > cfg.MaxReviews {
		raws = raws[:cfg.MaxReviews]
	}

	var labeller classify.Classifier
	if c, ok := src.(source.Classifying); ok {
		labeller = c.Classifier()
	}

	records := p.normalizer.NormalizeAll(platform, raws, labeller)
	observability.ObserveScraped(string(platform), len(records))
	log.Debug().Str("platform", string(platform)).Str("url", cfg.URL).
		Int("reviews", len(records)).Msg("source scraped")
	return records, nil
}

// resolve picks the source for cfg. A configured platform wins over host
// detection; a URL on an unknown host falls back to the generic source and
// takes its platform from cfg.
func (p *Pipeline) resolve(cfg model.SourceConfig) (source.Source, model.Platform, error) {
	if cfg.URL == "" {
		return nil, "", fmt.Errorf("source %q has no URL", cfg.Platform)
	}

	var configured model.Platform
	if cfg.Platform != "" {
		pl, ok := model.ParsePlatform(cfg.Platform)
		if !ok {
			return nil, "", fmt.Errorf("unknown platform %q", cfg.Platform)
		}
		configured = pl
	}

	if configured != "" {
		src, err := p.registry.ForPlatform(configured)
		if err != nil {
			return nil, "", err
		}
		return src, configured, nil
	}

	src := p.registry.FindSource(cfg.URL)
	if src.Platform() == "" {
		return nil, "", fmt.Errorf("cannot detect platform for %s: set it explicitly", cfg.URL)
	}
	return src, src.Platform(), nil
}

// Run scrapes every enabled source. Failing sources are logged and reported
// in the result; they never abort the others.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	return p.RunSources(ctx, p.config.Sources)
}

// RunSources scrapes the given sources instead of the configured ones
func (p *Pipeline) RunSources(ctx context.Context, sources []model.SourceConfig) (*RunResult, error) {
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := log.With().Str("run_id", result.RunID).Logger()

	active := make([]model.SourceConfig, 0, len(sources))
	for _, src := range sources {
		if !src.Enabled || src.URL == "" {
			logger.Debug().Str("platform", src.Platform).Msg("source skipped: disabled or no URL")
			continue
		}
		active = append(active, src)
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no enabled sources with a URL")
	}

	logger.Info().Int("sources", len(active)).Str("date_range", p.dateRange.String()).Msg("scrape started")

	batch := worker.NewBatchProcessor(p, p.config.Concurrency.Workers)
	for _, r := range batch.ProcessSources(ctx, active) {
		outcome := SourceOutcome{
			Platform: r.Source.Platform,
			URL:      r.Source.URL,
			Reviews:  len(r.Records),
			Duration: r.Duration,
		}
		if r.Error != nil {
			outcome.Error = r.Error.Error()
			observability.ObserveSourceError(r.Source.Platform)
			logger.Warn().Err(r.Error).Str("platform", r.Source.Platform).Str("url", r.Source.URL).
				Msg("source failed")
		}
		result.Sources = append(result.Sources, outcome)

		for _, rec := range r.Records {
			if !p.dateRange.Contains(rec.Date) {
				result.Filtered++
				continue
			}
			result.Records = append(result.Records, rec)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := Enrich(ctx, result.Records, p.baseline, false, p.config.Concurrency.ClassifyWorkers); err != nil {
		return nil, err
	}

	result.Duration = time.Since(result.StartedAt)
	logger.Info().Int("reviews", len(result.Records)).Int("filtered", result.Filtered).
		Int("failed_sources", result.Failed()).Dur("duration", result.Duration).Msg("scrape finished")
	return result, nil
}

// Enrich fills category and sentiment on every record in place, fanning out
// over workers goroutines. With force set existing labels are recomputed.
func Enrich(ctx context.Context, records []model.ReviewRecord, c classify.Classifier, force bool, workers int) error {
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			classify.Fill(c, &records[i], force)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("enrich: %w", err)
	}

	for i := range records {
		observability.ObserveClassified(records[i].Category, string(records[i].Sentiment))
	}
	return nil
}
