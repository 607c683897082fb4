package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// RenderMarkdown writes the analysis report for s
func RenderMarkdown(w io.Writer, s *Summary) error {
	var b strings.Builder

	title := "Review Analysis"
	if s.Restaurant != "" {
		title += ": " + s.Restaurant
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Total reviews: %d\n", s.Total)
	if s.RatedReviews > 0 {
		fmt.Fprintf(&b, "- Average rating: %.2f (std dev %.2f, %d rated)\n", s.AverageRating, s.RatingStdDev, s.RatedReviews)
	} else {
		b.WriteString("- Average rating: n/a\n")
	}
	if !s.FirstReview.IsZero() {
		fmt.Fprintf(&b, "- Period: %s to %s\n", s.FirstReview.Format("2006-01-02"), s.LastReview.Format("2006-01-02"))
	}
	b.WriteString("\n")

	writeTable(&b, s, "Platform", s.ByPlatform)
	writeTable(&b, s, "Sentiment", s.BySentiment)
	writeTable(&b, s, "Category", s.ByCategory)
	writeTable(&b, s, "Rating", s.ByRating)
	writeTable(&b, s, "Month", s.ByMonth)

	if len(s.TopKeywords) > 0 {
		b.WriteString("## Top Keywords\n\n")
		words := make([]string, 0, len(s.TopKeywords))
		for _, k := range s.TopKeywords {
			words = append(words, fmt.Sprintf("%s (%d)", k.Key, k.Count))
		}
		b.WriteString(strings.Join(words, ", "))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, s *Summary, title string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(b, "## By %s\n\n", title)
	fmt.Fprintf(b, "| %s | Count | Share |\n", title)
	b.WriteString("|---|---:|---:|\n")
	for _, c := range counts {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", escapeCell(c.Key), c.Count, s.Share(c.Count))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteReport renders the Markdown report to path
func WriteReport(path string, s *Summary) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := RenderMarkdown(f, s); err != nil {
		_ = f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
