package source

import (
	"regexp"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/net/html"
)

// googleStars matches the aria-label on the star widget, e.g. "4 stars"
var googleStars = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*stars?`)

// GoogleSource extracts reviews from Google Maps place pages
type GoogleSource struct {
	pageSource
}

// NewGoogleSource creates a Google Maps source
func NewGoogleSource(fetcher Fetcher, classifier classify.Classifier) *GoogleSource {
	s := &GoogleSource{}
	s.pageSource = pageSource{
		platform:   model.PlatformGoogle,
		domains:    []string{"google.com", "maps.google.com", "goo.gl", "g.page"},
		fetcher:    fetcher,
		classifier: classifier,
		extract:    s.extractReviews,
	}
	return s
}

func (s *GoogleSource) extractReviews(doc *html.Node, pageURL string) []model.RawReview {
	blocks := s.FindOuter(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" && s.HasAttribute(n, "data-review-id")
	})

	reviews := make([]model.RawReview, 0, len(blocks))
	for _, block := range blocks {
		r := model.RawReview{
			ReviewerName: s.FirstText(block, s.withClass("", "d4r55")),
			Date:         s.FirstText(block, s.withClass("", "rsqaWe")),
			Text:         s.FirstText(block, s.withClass("", "wiI7pd")),
			URL:          pageURL,
		}

		if stars := s.FindFirst(block, s.withAttr("span", "role", "img")); stars != nil {
			if m := googleStars.FindStringSubmatch(s.GetAttribute(stars, "aria-label")); m != nil {
				r.Rating = m[1]
			}
		}

		if r.Text == "" && r.Rating == "" {
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews
}
