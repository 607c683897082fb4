package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/dates"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/text/unicode/norm"
)

var (
	ratingNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

	// expander links left at the end of truncated text, after NFKC folding
	moreSuffixes = []string{"... More", "...More", "... Read more", " Read more"}
)

// Normalizer converts raw site fields into canonical review records
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer; now anchors relative dates and
// defaults to time.Now
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize builds a record from raw fields. When c is non-nil the record's
// category and sentiment are filled in.
func (n *Normalizer) Normalize(platform model.Platform, raw model.RawReview, c classify.Classifier) model.ReviewRecord {
	date, _ := dates.Parse(raw.Date, n.now())

	rec := model.ReviewRecord{
		Platform:     platform,
		ReviewerName: CleanText(raw.ReviewerName),
		Date:         date,
		Rating:       ParseRating(raw.Rating),
		Title:        CleanText(raw.Title),
		Text:         trimMore(CleanText(raw.Text)),
		URL:          strings.TrimSpace(raw.URL),
	}
	rec.Normalize()

	if c != nil {
		classify.Fill(c, &rec, false)
	}
	return rec
}

// NormalizeAll normalizes every raw review of one platform
func (n *Normalizer) NormalizeAll(platform model.Platform, raws []model.RawReview, c classify.Classifier) []model.ReviewRecord {
	records := make([]model.ReviewRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, n.Normalize(platform, raw, c))
	}
	return records
}

// ParseRating reads the first number in s as a star rating. Anything that is
// not a number in (0, 5] yields 0, meaning unknown.
func ParseRating(s string) float64 {
	m := ratingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil || !model.ValidRating(v) {
		return 0
	}
	return v
}

// CleanText applies NFKC normalization and collapses whitespace, so
// full-width letters, ligatures and non-breaking spaces compare equal to
// their plain forms
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func trimMore(s string) string {
	for _, suffix := range moreSuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	return s
}
