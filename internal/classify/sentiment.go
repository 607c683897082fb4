package classify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
)

// Decision selects how polarity counts become a label
type Decision int

const (
	// DecideThreshold labels Positive when pos/(pos+neg) >= threshold,
	// otherwise Negative. It never yields Neutral for scored text.
	DecideThreshold Decision = iota

	// DecideMajority compares counts directly; equal counts are Neutral
	DecideMajority
)

func (d Decision) String() string {
	switch d {
	case DecideThreshold:
		return "threshold"
	case DecideMajority:
		return "majority"
	default:
		return "unknown"
	}
}

// Policy describes one sentiment call site's behaviour
type Policy struct {
	Name string

	// UseRating enables the star-rating shortcut before text scoring
	UseRating bool

	Decision Decision

	// DefaultOnEmpty is returned for empty text and for text without any
	// sentiment words
	DefaultOnEmpty model.Sentiment
}

// ThresholdPolicy is the baseline applied to every record before export.
// Absence of signal is Positive.
var ThresholdPolicy = Policy{
	Name:           "threshold",
	UseRating:      false,
	Decision:       DecideThreshold,
	DefaultOnEmpty: model.SentimentPositive,
}

// RatingAwarePolicy is used by per-platform extractors that know the star
// rating. Absence of signal is Neutral.
var RatingAwarePolicy = Policy{
	Name:           "rating-aware",
	UseRating:      true,
	Decision:       DecideMajority,
	DefaultOnEmpty: model.SentimentNeutral,
}

// PolicyByName resolves a configured policy name
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThresholdPolicy.Name, "baseline", "boolean":
		return ThresholdPolicy, nil
	case RatingAwarePolicy.Name, "rating", "tri-state":
		return RatingAwarePolicy, nil
	default:
		return Policy{}, fmt.Errorf("unknown sentiment policy: %s (supported: threshold, rating-aware)", name)
	}
}

// Counts is the outcome of negation-aware polarity counting
type Counts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Negated  int `json:"negated"` // sentiment words whose polarity was flipped
}

// Total returns the number of scored sentiment words
func (c Counts) Total() int {
	return c.Positive + c.Negative
}

// Scorer assigns sentiment labels using a lexicon and a policy
type Scorer struct {
	lex    *lexicon.Lexicon
	policy Policy
}

// NewScorer creates a sentiment scorer
func NewScorer(lex *lexicon.Lexicon, policy Policy) *Scorer {
	return &Scorer{lex: lex, policy: policy}
}

// Policy returns the scorer's policy
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Analyze labels text, consulting rating first when the policy allows it.
// A rating of 0 (or anything outside (0, 5]) means no rating.
func (s *Scorer) Analyze(text string, rating float64) model.Sentiment {
	if s.policy.UseRating {
		if label, ok := RatingSentiment(rating); ok {
			return label
		}
	}

	if strings.TrimSpace(text) == "" {
		return s.policy.DefaultOnEmpty
	}

	counts := s.Counts(text)
	if counts.Total() == 0 {
		return s.policy.DefaultOnEmpty
	}

	switch s.policy.Decision {
	case DecideMajority:
		switch {
		case counts.Positive > counts.Negative:
			return model.SentimentPositive
		case counts.Positive < counts.Negative:
			return model.SentimentNegative
		default:
			return model.SentimentNeutral
		}
	default:
		score := float64(counts.Positive) / float64(counts.Total())
		if score >= s.lex.Threshold() {
			return model.SentimentPositive
		}
		return model.SentimentNegative
	}
}

// Counts walks the tokens of text counting polarity words. A negation word
// flips the polarity of sentiment words among the next NegationWindow tokens
// and is not scored itself.
func (s *Scorer) Counts(text string) Counts {
	var c Counts
	window := s.lex.NegationWindow()
	remaining := 0

	for _, tok := range Tokenize(text) {
		if s.lex.IsNegation(tok) {
			remaining = window
			continue
		}

		negated := remaining > 0
		if remaining > 0 {
			remaining--
		}

		switch {
		case s.lex.IsPositive(tok):
			if negated {
				c.Negative++
				c.Negated++
			} else {
				c.Positive++
			}
		case s.lex.IsNegative(tok):
			if negated {
				c.Positive++
				c.Negated++
			} else {
				c.Negative++
			}
		}
	}
	return c
}

// RatingSentiment applies the star-rating shortcut: 4 and above is Positive,
// 2 and below is Negative. Ratings in between or unknown report ok=false.
func RatingSentiment(rating float64) (model.Sentiment, bool) {
	if !model.ValidRating(rating) {
		return "", false
	}
	switch {
	case rating >= 4:
		return model.SentimentPositive, true
	case rating <= 2:
		return model.SentimentNegative, true
	default:
		return "", false
	}
}
