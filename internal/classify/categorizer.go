package classify

import (
	"strings"

	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
)

// CategoryScore is one category's keyword hit count for a text
type CategoryScore struct {
	Category string         `json:"category"`
	Score    int            `json:"score"`
	Matches  map[string]int `json:"matches,omitempty"` // keyword -> hits
}

// Categorizer assigns a single topic category to review text
type Categorizer struct {
	lex *lexicon.Lexicon
}

// NewCategorizer creates a categorizer over the given lexicon
func NewCategorizer(lex *lexicon.Lexicon) *Categorizer {
	return &Categorizer{lex: lex}
}

// Categorize returns the best-scoring category, the first one in lexicon
// order on a tie, or Other when nothing matches.
func (c *Categorizer) Categorize(text string) string {
	if strings.TrimSpace(text) == "" {
		return model.CategoryOther
	}

	best := model.CategoryOther
	bestScore := 0
	for _, s := range c.Scores(text) {
		// strict > keeps the earliest category on ties
		if s.Score > bestScore {
			best = s.Category
			bestScore = s.Score
		}
	}
	return best
}

// Scores returns per-category scores in lexicon order
func (c *Categorizer) Scores(text string) []CategoryScore {
	categories := c.lex.Categories()
	scores := make([]CategoryScore, 0, len(categories))
	if strings.TrimSpace(text) == "" {
		for _, cat := range categories {
			scores = append(scores, CategoryScore{Category: cat.Name})
		}
		return scores
	}

	lower := strings.ToLower(text)
	for _, cat := range categories {
		s := CategoryScore{Category: cat.Name}
		for _, kw := range cat.Keywords {
			n := countWholeWord(lower, kw)
			if n == 0 {
				continue
			}
			if s.Matches == nil {
				s.Matches = make(map[string]int)
			}
			s.Matches[kw] += n
			s.Score += n
		}
		scores = append(scores, s)
	}
	return scores
}
