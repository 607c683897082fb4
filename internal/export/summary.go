package export

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/ppiankov/reviewlens/internal/model"
	"gonum.org/v1/gonum/stat"
)

// DefaultTopKeywords is how many keywords Summarize reports
const DefaultTopKeywords = 20

const unknownKey = "unknown"

// Count is one bucket of a distribution
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary holds the statistics shown on the Summary sheet and in the report
type Summary struct {
	Restaurant  string    `json:"restaurant,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`

	ByPlatform  []Count `json:"by_platform"`
	ByRating    []Count `json:"by_rating"` // Highest first, unknown last
	ByCategory  []Count `json:"by_category"`
	BySentiment []Count `json:"by_sentiment"`
	ByMonth     []Count `json:"by_month"` // YYYY-MM ascending

	RatedReviews  int     `json:"rated_reviews"`
	AverageRating float64 `json:"average_rating"`
	RatingStdDev  float64 `json:"rating_std_dev"`

	FirstReview time.Time `json:"first_review,omitempty"`
	LastReview  time.Time `json:"last_review,omitempty"`

	TopKeywords []Count `json:"top_keywords"`
}

// Summarize computes the export statistics. topKeywords <= 0 uses the
// default.
func Summarize(restaurant string, records []model.ReviewRecord, topKeywords int) *Summary {
	if topKeywords <= 0 {
		topKeywords = DefaultTopKeywords
	}
	s := &Summary{
		Restaurant:  restaurant,
		GeneratedAt: time.Now().UTC(),
		Total:       len(records),
	}

	platforms := map[string]int{}
	ratings := map[string]int{}
	categories := map[string]int{}
	sentiments := map[string]int{}
	months := map[string]int{}
	var known []float64

	for i := range records {
		r := &records[i]
		platforms[string(r.Platform)]++
		categories[orUnknown(r.Category)]++
		sentiments[orUnknown(string(r.Sentiment))]++

		if model.ValidRating(r.Rating) {
			ratings[strconv.FormatFloat(r.Rating, 'f', -1, 64)]++
			known = append(known, r.Rating)
		} else {
			ratings[unknownKey]++
		}

		if !r.Date.IsZero() {
			months[r.Date.Format("2006-01")]++
			if s.FirstReview.IsZero() || r.Date.Before(s.FirstReview) {
				s.FirstReview = r.Date
			}
			if r.Date.After(s.LastReview) {
				s.LastReview = r.Date
			}
		}
	}

	s.ByPlatform = orderedCounts(platforms, platformOrder())
	s.BySentiment = orderedCounts(sentiments, []string{
		string(model.SentimentPositive), string(model.SentimentNegative), string(model.SentimentNeutral),
	})
	s.ByCategory = byCount(categories)
	s.ByRating = byRating(ratings)
	s.ByMonth = byKey(months)

	s.RatedReviews = len(known)
	switch len(known) {
	case 0:
	case 1:
		s.AverageRating = known[0]
	default:
		s.AverageRating, s.RatingStdDev = stat.MeanStdDev(known, nil)
	}

	s.TopKeywords = TopKeywords(records, topKeywords)
	return s
}

// Share returns count as a percentage of the summary total
func (s *Summary) Share(count int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(s.Total)
}

// TopKeywords returns the n most frequent words across review texts, English
// stopwords and words shorter than three letters removed. Ties are broken
// alphabetically.
func TopKeywords(records []model.ReviewRecord, n int) []Count {
	freq := map[string]int{}
	for i := range records {
		if records[i].Text == "" {
			continue
		}
		cleaned := stopwords.CleanString(strings.ToLower(records[i].Text), "en", false)
		for _, w := range strings.Fields(cleaned) {
			w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
			if len([]rune(w)) < 3 {
				continue
			}
			freq[w]++
		}
	}
	counts := byCount(freq)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

func platformOrder() []string {
	order := make([]string, 0, 3)
	for _, p := range model.Platforms() {
		order = append(order, string(p))
	}
	return order
}

func orUnknown(s string) string {
	if s == "" {
		return unknownKey
	}
	return s
}

// orderedCounts lists the keys of order first, then any other keys by count
func orderedCounts(m map[string]int, order []string) []Count {
	out := make([]Count, 0, len(m))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		seen[k] = true
		if m[k] > 0 {
			out = append(out, Count{Key: k, Count: m[k]})
		}
	}
	rest := map[string]int{}
	for k, v := range m {
		if !seen[k] {
			rest[k] = v
		}
	}
	return append(out, byCount(rest)...)
}

func byCount(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func byKey(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func byRating(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key == unknownKey || out[j].Key == unknownKey {
			return out[j].Key == unknownKey && out[i].Key != unknownKey
		}
		a, _ := strconv.ParseFloat(out[i].Key, 64)
		b, _ := strconv.ParseFloat(out[j].Key, 64)
		return a > b
	})
	return out
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Key: k, Count: v})
	}
	return out
}
