package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/net/html"
)

var (
	yelpStarLabel = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*star`)
	yelpStarClass = regexp.MustCompile(`stars_(\d+)`)
)

// YelpSource extracts reviews from Yelp business pages
type YelpSource struct {
	pageSource
}

// NewYelpSource creates a Yelp source
func NewYelpSource(fetcher Fetcher, classifier classify.Classifier) *YelpSource {
	s := &YelpSource{}
	s.pageSource = pageSource{
		platform:   model.PlatformYelp,
		domains:    []string{"yelp.com"},
		fetcher:    fetcher,
		classifier: classifier,
		extract:    s.extractReviews,
	}
	return s
}

func (s *YelpSource) extractReviews(doc *html.Node, pageURL string) []model.RawReview {
	blocks := s.FindOuter(doc, s.withClass("", "review"))

	reviews := make([]model.RawReview, 0, len(blocks))
	for _, block := range blocks {
		r := model.RawReview{
			Date: s.FirstText(block,
				s.withClass("span", "css-chan6m"),
				s.withClass("", "rating-qualifier")),
			Text: s.FirstText(block,
				s.withClass("span", "raw__09f24__T4Ezm"),
				s.withClass("p", "comment")),
			Rating: s.rating(block),
			URL:    pageURL,
		}

		if author := s.FindFirst(block, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "a" &&
				strings.Contains(s.GetAttribute(n, "href"), "/user_details")
		}); author != nil {
			r.ReviewerName = s.ExtractText(author)
		}

		if r.Text == "" && r.Rating == "" {
			continue
		}
		reviews = append(reviews, r)
	}
	return reviews
}

// rating reads the star widget's aria-label, falling back to the legacy
// stars_NN class where NN is tenths of a star
func (s *YelpSource) rating(block *html.Node) string {
	if stars := s.FindFirst(block, s.withAttr("div", "role", "img")); stars != nil {
		if m := yelpStarLabel.FindStringSubmatch(s.GetAttribute(stars, "aria-label")); m != nil {
			return m[1]
		}
	}

	legacy := s.FindFirst(block, func(n *html.Node) bool {
		return n.Type == html.ElementNode && yelpStarClass.MatchString(s.GetAttribute(n, "class"))
	})
	if legacy != nil {
		m := yelpStarClass.FindStringSubmatch(s.GetAttribute(legacy, "class"))
		if tenths, err := strconv.Atoi(m[1]); err == nil {
			return strconv.FormatFloat(float64(tenths)/10, 'f', -1, 64)
		}
	}
	return ""
}
