package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/export"
	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/pipeline"
	"github.com/spf13/cobra"
)

var classifyOpts struct {
	force      bool
	policy     string
	out        string
	excelPath  string
	reportPath string
	restaurant string
}

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <csv>",
	Short: "Categorize and score the reviews of an existing CSV",
	Long: `Classify re-processes a previously exported (or hand-made) CSV: missing
category and sentiment values are filled in, or every value is recomputed with
--force. Loose column names such as "comment", "stars" or "source" are
accepted.

Example:
  reviewlens classify data/restaurant_reviews.csv
  reviewlens classify old.csv --force --out processed.csv --excel processed.xlsx
  reviewlens classify reviews.csv --policy rating-aware --report report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	f := classifyCmd.Flags()
	f.BoolVar(&classifyOpts.force, "force", false, "recompute existing category and sentiment values")
	f.StringVar(&classifyOpts.policy, "policy", "", "sentiment policy: threshold or rating-aware (default from config baseline)")
	f.StringVar(&classifyOpts.out, "out", "", "output CSV path (default: <input>_processed.csv)")
	f.StringVar(&classifyOpts.excelPath, "excel", "", "also write an XLSX workbook")
	f.StringVar(&classifyOpts.reportPath, "report", "", "also write a Markdown report")
	f.StringVar(&classifyOpts.restaurant, "restaurant", "", "restaurant name shown in the summary")
}

func runClassify(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if classifyOpts.policy != "" {
		cfg.Sentiment.Baseline = classifyOpts.policy
	}
	if classifyOpts.restaurant != "" {
		cfg.Restaurant = classifyOpts.restaurant
	}

	engine, err := newEngine(cfg.Lexicon, cfg.Sentiment.Baseline)
	if err != nil {
		return err
	}

	records, err := export.ReadCSV(input)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s holds no reviews", input)
	}

	if err := pipeline.Enrich(context.Background(), records, engine, classifyOpts.force, cfg.Concurrency.ClassifyWorkers); err != nil {
		return err
	}

	out := classifyOpts.out
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "_processed.csv"
	}

	outCfg := *cfg
	outCfg.Output = model.OutputConfig{
		CSVPath:    out,
		ExcelPath:  classifyOpts.excelPath,
		ReportPath: classifyOpts.reportPath,
	}
	paths, err := exportAll(&outCfg, records)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Classified %d reviews with the %s policy\n", len(records), cfg.Sentiment.Baseline)
	for _, path := range paths {
		fmt.Fprintf(w, "✓ Wrote %s\n", path)
	}
	return nil
}

// newEngine builds a classification engine from the configured lexicon
func newEngine(cfg model.LexiconConfig, policyName string) (*classify.Engine, error) {
	lex, err := lexicon.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := classify.PolicyByName(policyName)
	if err != nil {
		return nil, err
	}
	return classify.NewEngine(lex, policy), nil
}

// exportAll writes every output configured in cfg.Output and returns the
// paths written
func exportAll(cfg *model.Config, records []model.ReviewRecord) ([]string, error) {
	var written []string
	summary := export.Summarize(cfg.Restaurant, records, export.DefaultTopKeywords)

	if path := cfg.Output.CSVPath; path != "" {
		write := export.WriteCSV
		if cfg.Output.AppendCSV {
			write = export.AppendCSV
		}
		if err := write(path, records); err != nil {
			return written, fmt.Errorf("write CSV: %w", err)
		}
		written = append(written, path)
	}

	if path := cfg.Output.ExcelPath; path != "" {
		if err := export.WriteExcel(path, records, summary); err != nil {
			return written, fmt.Errorf("write XLSX: %w", err)
		}
		written = append(written, path)
	}

	if path := cfg.Output.ReportPath; path != "" {
		if err := export.WriteReport(path, summary); err != nil {
			return written, fmt.Errorf("write report: %w", err)
		}
		written = append(written, path)
	}

	if cfg.Output.Verbose {
		for _, c := range summary.BySentiment {
			fmt.Fprintf(os.Stderr, "  %-10s %d\n", c.Key, c.Count)
		}
	}
	return written, nil
}
