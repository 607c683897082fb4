package model

import (
	"math"
	"strings"
	"time"
)

// Platform identifies the review site a record was scraped from
type Platform string

const (
	PlatformGoogle      Platform = "Google"      // Map/search platform reviews
	PlatformYelp        Platform = "Yelp"        // Marketplace review site
	PlatformTripAdvisor Platform = "TripAdvisor" // Travel review site
)

// Platforms lists every supported platform in export order
func Platforms() []Platform {
	return []Platform{PlatformGoogle, PlatformYelp, PlatformTripAdvisor}
}

// ParsePlatform resolves a platform name or alias (case-insensitive)
func ParsePlatform(name string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "google", "google maps", "maps", "map":
		return PlatformGoogle, true
	case "yelp", "marketplace":
		return PlatformYelp, true
	case "tripadvisor", "trip advisor", "travel":
		return PlatformTripAdvisor, true
	default:
		return "", false
	}
}

// Sentiment is the polarity label assigned to a review
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// ParseSentiment maps the loose spellings found in older CSV exports
// (booleans, yes/no, 1/0) onto a label. Unknown values map to Neutral.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", false
	case "positive", "true", "t", "yes", "y", "1":
		return SentimentPositive, true
	case "negative", "false", "f", "no", "n", "0":
		return SentimentNegative, true
	default:
		return SentimentNeutral, true
	}
}

// CategoryOther is the fallback category; it is never keyword-matched
const CategoryOther = "Other"

// DefaultReviewerName is used when a platform does not expose the author
const DefaultReviewerName = "Anonymous"

// MaxRating is the top of the star scale
const MaxRating = 5.0

// ReviewRecord is the canonical review shape shared by all platforms
type ReviewRecord struct {
	Platform     Platform  `json:"platform"`
	ReviewerName string    `json:"reviewer_name"`
	Date         time.Time `json:"date"`   // Calendar date, time of day is ignored
	Rating       float64   `json:"rating"` // 0 means unknown, not zero stars
	Title        string    `json:"title,omitempty"`
	Text         string    `json:"text"`
	Category     string    `json:"category"`
	Sentiment    Sentiment `json:"sentiment"`
	URL          string    `json:"url,omitempty"`
}

// Normalize applies record-level defaults: reviewer name, rating range and
// date truncation.
func (r *ReviewRecord) Normalize() {
	r.ReviewerName = strings.TrimSpace(r.ReviewerName)
	if r.ReviewerName == "" {
		r.ReviewerName = DefaultReviewerName
	}
	if !ValidRating(r.Rating) {
		r.Rating = 0
	}
	if !r.Date.IsZero() {
		y, m, d := r.Date.Date()
		r.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Text = strings.TrimSpace(r.Text)
}

// IsClassified reports whether both category and sentiment are assigned
func (r *ReviewRecord) IsClassified() bool {
	return r.Category != "" && r.Sentiment != ""
}

// DateString formats the record date as YYYY-MM-DD (empty if unknown)
func (r *ReviewRecord) DateString() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

// ValidRating reports whether rating is a known star value in (0, 5]
func ValidRating(rating float64) bool {
	return !math.IsNaN(rating) && rating > 0 && rating <= MaxRating
}

// RawReview holds the site-specific fields extracted from a review element
// before normalization. All values are raw text as found on the page.
type RawReview struct {
	ReviewerName string `json:"reviewer_name,omitempty"`
	Date         string `json:"date,omitempty"`
	Rating       string `json:"rating,omitempty"`
	Title        string `json:"title,omitempty"`
	Text         string `json:"text,omitempty"`
	URL          string `json:"url,omitempty"`
}
