package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/pipeline"
	"github.com/ppiankov/reviewlens/internal/worker"
	"github.com/spf13/cobra"
)

var scrapeOpts struct {
	restaurant     string
	googleURL      string
	yelpURL        string
	tripAdvisorURL string
	urlsFile       string
	platforms      []string
	maxReviews     int
	start          string
	end            string

	csvPath    string
	excelPath  string
	reportPath string
	appendCSV  bool

	runTimeout time.Duration
	timeout    time.Duration
	userAgent  string
	httpProxy  string
	httpsProxy string
	proxies    []string
	workers    int
	noCache    bool
	noRobots   bool
}

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape, classify and export reviews for one restaurant",
	Long: `Scrape fetches the review pages configured for each platform, extracts
and normalizes every review, keeps those inside the date range, labels each
with a category and a sentiment, and writes CSV, XLSX and (optionally)
Markdown outputs.

A failing platform is reported and skipped; the others still export.

Example:
  reviewlens scrape --yelp-url https://www.yelp.com/biz/marsh-shack
  reviewlens scrape --urls-file sources.txt --start 2024-01-01 --end 2024-06-30
  reviewlens scrape --platform yelp,tripadvisor --append --report report.md`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()

	// Source flags
	f.StringVar(&scrapeOpts.restaurant, "restaurant", "", "restaurant name shown in the summary")
	f.StringVar(&scrapeOpts.googleURL, "google-url", "", "Google Maps reviews URL")
	f.StringVar(&scrapeOpts.yelpURL, "yelp-url", "", "Yelp business page URL")
	f.StringVar(&scrapeOpts.tripAdvisorURL, "tripadvisor-url", "", "TripAdvisor restaurant page URL")
	f.StringVar(&scrapeOpts.urlsFile, "urls-file", "", "read sources from a file, one \"[platform] url\" per line")
	f.StringSliceVar(&scrapeOpts.platforms, "platform", nil, "only scrape these platforms (google, yelp, tripadvisor)")
	f.IntVar(&scrapeOpts.maxReviews, "max-reviews", 0, "max reviews per source (0 = unlimited)")
	f.StringVar(&scrapeOpts.start, "start", "", "earliest review date, YYYY-MM-DD")
	f.StringVar(&scrapeOpts.end, "end", "", "latest review date, YYYY-MM-DD")

	// Output flags
	f.StringVar(&scrapeOpts.csvPath, "csv", "", "output CSV path (default from config)")
	f.StringVar(&scrapeOpts.excelPath, "excel", "", "output XLSX path (default from config)")
	f.StringVar(&scrapeOpts.reportPath, "report", "", "output Markdown report path (optional)")
	f.BoolVar(&scrapeOpts.appendCSV, "append", false, "append to the CSV if it exists instead of replacing it")

	// HTTP flags
	f.DurationVar(&scrapeOpts.runTimeout, "run-timeout", 10*time.Minute, "overall scrape timeout")
	f.DurationVar(&scrapeOpts.timeout, "timeout", 0, "per-request timeout (default from config)")
	f.StringVar(&scrapeOpts.userAgent, "ua", "", "HTTP User-Agent (default from config)")
	f.StringVar(&scrapeOpts.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.StringVar(&scrapeOpts.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	f.StringSliceVar(&scrapeOpts.proxies, "proxy", nil, "rotate requests through these proxies")
	f.IntVar(&scrapeOpts.workers, "workers", 0, "concurrent source scrapes (default from config)")
	f.BoolVar(&scrapeOpts.noCache, "no-cache", false, "disable cache (force fresh fetch)")
	f.BoolVar(&scrapeOpts.noRobots, "no-robots", false, "do not consult robots.txt")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScrapeFlags(cfg)

	sources, err := scrapeSources(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), scrapeOpts.runTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fetcher, err := pipeline.NewFetcherFromConfig(cfg, scrapeOpts.noCache, scrapeOpts.noRobots)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg, fetcher)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  reviewlens scrape\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	if cfg.Restaurant != "" {
		fmt.Fprintf(os.Stderr, "  Restaurant:   %s\n", cfg.Restaurant)
	}
	fmt.Fprintf(os.Stderr, "  Sources:      %d\n", len(sources))
	fmt.Fprintf(os.Stderr, "  Date range:   %s..%s\n", orStar(cfg.DateRange.Start), orStar(cfg.DateRange.End))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	result, err := p.RunSources(ctx, sources)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	for _, s := range result.Sources {
		if s.Error != "" {
			fmt.Fprintf(os.Stderr, "✗ %s %s: %s\n", platformLabel(s.Platform), s.URL, s.Error)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s: %d reviews (%s)\n", platformLabel(s.Platform), s.Reviews, s.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(os.Stderr, "\n")

	if len(result.Records) == 0 {
		if result.Failed() == len(result.Sources) {
			return fmt.Errorf("no reviews collected: every source failed")
		}
		fmt.Fprintf(os.Stderr, "No reviews in range; nothing exported.\n")
		return nil
	}

	paths, err := exportAll(cfg, result.Records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Scrape Complete (run %s)\n", result.RunID)
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Reviews:        %d\n", len(result.Records))
	fmt.Fprintf(os.Stderr, "  Out of range:   %d\n", result.Filtered)
	fmt.Fprintf(os.Stderr, "  Failed sources: %d\n", result.Failed())
	fmt.Fprintf(os.Stderr, "  Duration:       %s\n", result.Duration.Round(time.Millisecond))
	for _, path := range paths {
		fmt.Fprintf(os.Stderr, "  Wrote:          %s\n", path)
	}
	fmt.Fprintf(os.Stderr, "\n")
	return nil
}

// applyScrapeFlags overrides configuration with flags the user set
func applyScrapeFlags(cfg *model.Config) {
	o := scrapeOpts
	if o.restaurant != "" {
		cfg.Restaurant = o.restaurant
	}
	if o.start != "" {
		cfg.DateRange.Start = o.start
	}
	if o.end != "" {
		cfg.DateRange.End = o.end
	}
	if o.csvPath != "" {
		cfg.Output.CSVPath = o.csvPath
	}
	if o.excelPath != "" {
		cfg.Output.ExcelPath = o.excelPath
	}
	if o.reportPath != "" {
		cfg.Output.ReportPath = o.reportPath
	}
	if o.appendCSV {
		cfg.Output.AppendCSV = true
	}
	if o.timeout > 0 {
		cfg.HTTP.Timeout = o.timeout
	}
	if o.userAgent != "" {
		cfg.HTTP.UserAgent = o.userAgent
	}
	if o.httpProxy != "" {
		cfg.HTTP.HTTPProxy = o.httpProxy
	}
	if o.httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = o.httpsProxy
	}
	if len(o.proxies) > 0 {
		cfg.HTTP.Proxies = o.proxies
	}
	if o.workers > 0 {
		cfg.Concurrency.Workers = o.workers
	}

	urls := map[model.Platform]string{
		model.PlatformGoogle:      o.googleURL,
		model.PlatformYelp:        o.yelpURL,
		model.PlatformTripAdvisor: o.tripAdvisorURL,
	}
	for platform, u := range urls {
		if u == "" {
			continue
		}
		found := false
		for i := range cfg.Sources {
			if p, ok := model.ParsePlatform(cfg.Sources[i].Platform); ok && p == platform {
				cfg.Sources[i].URL = u
				cfg.Sources[i].Enabled = true
				found = true
			}
		}
		if !found {
			cfg.Sources = append(cfg.Sources, model.SourceConfig{Platform: string(platform), URL: u, Enabled: true})
		}
	}
}

// scrapeSources returns the sources to scrape after the file and platform
// filters
func scrapeSources(cfg *model.Config) ([]model.SourceConfig, error) {
	sources := cfg.Sources
	if scrapeOpts.urlsFile != "" {
		fromFile, err := worker.ReadSourcesFromFile(scrapeOpts.urlsFile)
		if err != nil {
			return nil, err
		}
		sources = fromFile
	}

	if len(scrapeOpts.platforms) > 0 {
		want := map[model.Platform]bool{}
		for _, name := range scrapeOpts.platforms {
			p, ok := model.ParsePlatform(name)
			if !ok {
				return nil, fmt.Errorf("unknown platform %q (supported: google, yelp, tripadvisor)", name)
			}
			want[p] = true
		}
		var filtered []model.SourceConfig
		for _, src := range sources {
			if p, ok := model.ParsePlatform(src.Platform); ok && want[p] {
				filtered = append(filtered, src)
			}
		}
		sources = filtered
	}

	for i := range sources {
		if scrapeOpts.maxReviews > 0 {
			sources[i].MaxReviews = scrapeOpts.maxReviews
		}
	}

	hasURL := false
	for _, src := range sources {
		if src.Enabled && src.URL != "" {
			hasURL = true
			break
		}
	}
	if !hasURL {
		return nil, fmt.Errorf("no source URLs: pass --google-url, --yelp-url, --tripadvisor-url or --urls-file, or set sources in the config file")
	}
	return sources, nil
}

func platformLabel(p string) string {
	if p == "" {
		return "auto"
	}
	return p
}

func orStar(s string) string {
	if strings.TrimSpace(s) == "" {
		return "*"
	}
	return s
}
