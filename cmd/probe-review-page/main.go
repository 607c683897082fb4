// Probe program to check review extraction against live pages.
// It shows which adapter handles each URL and how its reviews are labelled.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/pipeline"
	"github.com/ppiankov/reviewlens/internal/source"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: probe-review-page <url> [url...]")
		os.Exit(2)
	}

	cfg := model.DefaultConfig()
	fetcher := pipeline.NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes)
	engine := classify.NewEngine(lexicon.Default(), classify.RatingAwarePolicy)
	registry := source.NewRegistry(fetcher, engine)
	normalizer := source.NewNormalizer(nil)

	fmt.Println("=== Review Page Probe ===")
	fmt.Println()

	for _, url := range os.Args[1:] {
		fmt.Printf("Probing: %s\n", url)
		fmt.Println(strings.Repeat("-", 60))

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		src := registry.FindSource(url)
		platform := src.Platform()
		if platform == "" {
			fmt.Println("  Adapter: generic (JSON-LD only)")
		} else {
			fmt.Printf("  Adapter: %s\n", platform)
		}

		raws, err := src.FetchReviewElements(ctx, url)
		cancel()
		if err != nil {
			fmt.Printf("  ✗ %v\n\n", err)
			continue
		}

		records := normalizer.NormalizeAll(platform, raws, engine)
		fmt.Printf("  ✓ %d reviews\n", len(records))
		for i, r := range records {
			if i == 5 {
				fmt.Printf("    ... %d more\n", len(records)-5)
				break
			}
			text := r.Text
			if runes := []rune(text); len(runes) > 70 {
				text = string(runes[:70]) + "..."
			}
			fmt.Printf("    - %s | %s | %g | %s/%s\n      %s\n",
				r.ReviewerName, r.DateString(), r.Rating, r.Category, r.Sentiment, text)
		}
		fmt.Println()
	}

	fmt.Println("=== Probe Complete ===")
	fmt.Println("\nNote: pages rendered by JavaScript may hold no reviews in their static HTML.")
}
