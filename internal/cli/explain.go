package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/spf13/cobra"
)

var explainOpts struct {
	rating  float64
	jsonOut bool
}

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain <text>",
	Short: "Show how a review text is categorized and scored",
	Long: `Explain prints the keyword hits of every category, the negation-aware
polarity counts, and the labels both sentiment policies assign.

Example:
  reviewlens explain "The food was not good and the service was slow"
  reviewlens explain "Fine I guess" --rating 4
  reviewlens explain "Never again" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().Float64Var(&explainOpts.rating, "rating", 0, "star rating 1-5 (0 = unknown)")
	explainCmd.Flags().BoolVar(&explainOpts.jsonOut, "json", false, "print the explanation as JSON")
}

// Explanation is the machine-readable output of explain
type Explanation struct {
	Text       string                   `json:"text"`
	Rating     float64                  `json:"rating,omitempty"`
	Category   string                   `json:"category"`
	Scores     []classify.CategoryScore `json:"scores"`
	Counts     classify.Counts          `json:"counts"`
	Sentiments map[string]string        `json:"sentiments"` // policy -> label
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lex, err := lexicon.FromConfig(cfg.Lexicon)
	if err != nil {
		return err
	}

	ex := explain(lex, strings.Join(args, " "), explainOpts.rating)

	if explainOpts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ex)
	}
	return printExplanation(cmd.OutOrStdout(), ex)
}

func explain(lex *lexicon.Lexicon, text string, rating float64) Explanation {
	engine := classify.NewEngine(lex, classify.ThresholdPolicy)
	categorizer, scorer := engine.Categorizer(), engine.Scorer()

	ex := Explanation{
		Text:       text,
		Rating:     rating,
		Category:   categorizer.Categorize(text),
		Scores:     categorizer.Scores(text),
		Counts:     scorer.Counts(text),
		Sentiments: map[string]string{},
	}
	for _, policy := range []classify.Policy{classify.ThresholdPolicy, classify.RatingAwarePolicy} {
		ex.Sentiments[policy.Name] = string(classify.NewScorer(lex, policy).Analyze(text, rating))
	}
	return ex
}

func printExplanation(w io.Writer, ex Explanation) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Text:     %q\n", ex.Text)
	if model.ValidRating(ex.Rating) {
		fmt.Fprintf(&b, "Rating:   %g\n", ex.Rating)
	} else {
		b.WriteString("Rating:   unknown\n")
	}
	b.WriteString("\nCategory scores (lexicon order, first wins ties):\n")
	for _, s := range ex.Scores {
		marker := " "
		if s.Category == ex.Category {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s %-24s %d", marker, s.Category, s.Score)
		if len(s.Matches) > 0 {
			fmt.Fprintf(&b, "  %s", formatMatches(s.Matches))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nCategory: %s\n", ex.Category)

	fmt.Fprintf(&b, "\nPolarity: %d positive, %d negative (%d flipped by negation)\n",
		ex.Counts.Positive, ex.Counts.Negative, ex.Counts.Negated)
	fmt.Fprintf(&b, "Sentiment (%s):    %s\n", classify.ThresholdPolicy.Name, ex.Sentiments[classify.ThresholdPolicy.Name])
	fmt.Fprintf(&b, "Sentiment (%s): %s\n", classify.RatingAwarePolicy.Name, ex.Sentiments[classify.RatingAwarePolicy.Name])

	_, err := io.WriteString(w, b.String())
	return err
}

func formatMatches(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s×%d", k, m[k]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
