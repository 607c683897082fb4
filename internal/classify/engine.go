// Package classify implements the keyword categorizer and the negation-aware
// sentiment scorer applied to every review before export.
//
// Everything here is a pure function of its inputs and the immutable lexicon:
// no I/O, no shared mutable state, safe for concurrent use.
package classify

import (
	"strings"

	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
)

// Classifier is the optional capability a source adapter may carry to label
// reviews at extraction time.
type Classifier interface {
	Categorize(text string) string
	Sentiment(text string, rating float64) model.Sentiment
}

// ExtractorNone disables labelling at extraction time, leaving every record
// to the baseline engine
const ExtractorNone = "none"

// ExtractorByName returns the classifier source adapters carry for the named
// policy. An empty name, "none" or "off" yields a nil Classifier.
func ExtractorByName(lex *lexicon.Lexicon, name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ExtractorNone, "off":
		return nil, nil
	}
	policy, err := PolicyByName(name)
	if err != nil {
		return nil, err
	}
	return NewEngine(lex, policy), nil
}

// Engine pairs a categorizer with a sentiment scorer
type Engine struct {
	categorizer *Categorizer
	scorer      *Scorer
}

// NewEngine creates an engine for the lexicon and sentiment policy
func NewEngine(lex *lexicon.Lexicon, policy Policy) *Engine {
	return &Engine{
		categorizer: NewCategorizer(lex),
		scorer:      NewScorer(lex, policy),
	}
}

// Categorize assigns a category to text
func (e *Engine) Categorize(text string) string {
	return e.categorizer.Categorize(text)
}

// Sentiment assigns a sentiment label to text
func (e *Engine) Sentiment(text string, rating float64) model.Sentiment {
	return e.scorer.Analyze(text, rating)
}

// Categorizer exposes the underlying categorizer
func (e *Engine) Categorizer() *Categorizer {
	return e.categorizer
}

// Scorer exposes the underlying sentiment scorer
func (e *Engine) Scorer() *Scorer {
	return e.scorer
}

// Fill assigns category and sentiment to rec where they are still missing.
// With force set, existing labels are recomputed.
func Fill(c Classifier, rec *model.ReviewRecord, force bool) {
	if force || rec.Category == "" {
		rec.Category = c.Categorize(rec.Text)
	}
	if force || rec.Sentiment == "" {
		rec.Sentiment = c.Sentiment(rec.Text, rec.Rating)
	}
}
