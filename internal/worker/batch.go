package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/reviewlens/internal/model"
)

// Scraper scrapes every review for one configured source
type Scraper interface {
	ScrapeSource(ctx context.Context, src model.SourceConfig) ([]model.ReviewRecord, error)
}

// ScrapeJob represents one source scrape
type ScrapeJob struct {
	Index   int
	Source  model.SourceConfig
	Scraper Scraper
}

// Execute executes the scrape job
func (j *ScrapeJob) Execute(ctx context.Context) Result {
	start := time.Now()
	records, err := j.Scraper.ScrapeSource(ctx, j.Source)
	return &ScrapeResult{
		Index:    j.Index,
		Source:   j.Source,
		Records:  records,
		Duration: time.Since(start),
		Error:    err,
	}
}

// ScrapeResult represents the result of a scrape job
type ScrapeResult struct {
	Index    int
	Source   model.SourceConfig
	Records  []model.ReviewRecord
	Duration time.Duration
	Error    error
}

// GetError returns the error from the scrape result
func (r *ScrapeResult) GetError() error {
	return r.Error
}

// BatchProcessor scrapes multiple sources concurrently
type BatchProcessor struct {
	scraper     Scraper
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(scraper Scraper, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		scraper:     scraper,
		concurrency: concurrency,
	}
}

// ProcessSources scrapes the sources concurrently and returns one result per
// source, in input order. Sources never scheduled because ctx was cancelled
// carry ctx's error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []model.SourceConfig) []*ScrapeResult {
	if len(sources) == 0 {
		return []*ScrapeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, src := range sources {
		pool.Submit(&ScrapeJob{
			Index:   i,
			Source:  src,
			Scraper: b.scraper,
		})
	}

	results := pool.Wait()

	ordered := make([]*ScrapeResult, len(sources))
	for _, result := range results {
		r := result.(*ScrapeResult)
		ordered[r.Index] = r
	}
	for i := range ordered {
		if ordered[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("scrape of %s was not scheduled", sources[i].Platform)
			}
			ordered[i] = &ScrapeResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads sources from a file and scrapes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ScrapeResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads review page URLs from a file, one per line. A line
// may name the platform before the URL ("yelp https://..."); otherwise the
// platform is left for the source registry to detect from the host.
func ReadSourcesFromFile(filePath string) ([]model.SourceConfig, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []model.SourceConfig
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		src := model.SourceConfig{Enabled: true}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			src.URL = fields[0]
		case 2:
			platform, ok := model.ParsePlatform(fields[0])
			if !ok {
				return nil, fmt.Errorf("line %d: unknown platform %q", lineNo, fields[0])
			}
			src.Platform = string(platform)
			src.URL = fields[1]
		default:
			return nil, fmt.Errorf("line %d: expected \"[platform] url\"", lineNo)
		}

		// Deduplicate URLs
		if !seen[src.URL] {
			seen[src.URL] = true
			sources = append(sources, src)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
