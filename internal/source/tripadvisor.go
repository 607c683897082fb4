package source

import (
	"strconv"
	"strings"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/net/html"
)

// TripAdvisorSource extracts reviews from TripAdvisor restaurant pages
type TripAdvisorSource struct {
	pageSource
}

// NewTripAdvisorSource creates a TripAdvisor source
func NewTripAdvisorSource(fetcher Fetcher, classifier classify.Classifier) *TripAdvisorSource {
	s := &TripAdvisorSource{}
	s.pageSource = pageSource{
		platform:   model.PlatformTripAdvisor,
		domains:    []string{"tripadvisor.com", "tripadvisor.co.uk", "tripadvisor.ca"},
		fetcher:    fetcher,
		classifier: classifier,
		extract:    s.extractReviews,
	}
	return s
}

func (s *TripAdvisorSource) extractReviews(doc *html.Node, pageURL string) []model.RawReview {
	blocks := s.FindOuter(doc, s.withClass("", "reviewSelector"))

	reviews := make([]model.RawReview, 0, len(blocks))
	for _, block := range blocks {
		r := model.RawReview{
			ReviewerName: s.FirstText(block, s.withClass("", "info_text")),
			Title:        s.FirstText(block, s.withClass("", "noQuotes")),
			Text:         s.FirstText(block, s.withClass("", "partial_entry")),
			Rating:       s.rating(block),
			Date:         s.date(block),
			URL:          pageURL,
		}

		if link := s.FindFirst(block, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" &&
				strings.Contains(s.GetAttribute(n, "href"), "ShowUserReviews")
		}); link != nil {
			r.URL = resolveURL(pageURL, s.GetAttribute(link, "href"))
		}

		if r.Text == "" && r.Rating == "" {
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews
}

// rating reads the bubble_NN class where NN is tenths of a bubble
func (s *TripAdvisorSource) rating(block *html.Node) string {
	bubbles := s.FindFirst(block, s.withClass("", "ui_bubble_rating"))
	class := s.ClassWithPrefix(bubbles, "bubble_")
	if class == "" {
		return ""
	}
	tenths, err := strconv.Atoi(strings.TrimPrefix(class, "bubble_"))
	if err != nil {
		return ""
	}
	return strconv.FormatFloat(float64(tenths)/10, 'f', -1, 64)
}

// date prefers the title attribute ("March 3, 2024") over the visible
// relative text ("Reviewed 2 weeks ago")
func (s *TripAdvisorSource) date(block *html.Node) string {
	node := s.FindFirst(block, s.withClass("", "ratingDate"))
	if node == nil {
		node = s.FindFirst(block, s.withClass("", "relativeDate"))
	}
	if node == nil {
		return ""
	}
	if title := strings.TrimSpace(s.GetAttribute(node, "title")); title != "" {
		return title
	}
	return s.ExtractText(node)
}
