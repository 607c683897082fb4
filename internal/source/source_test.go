package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/lexicon"
	"github.com/ppiankov/reviewlens/internal/model"
)

const googlePage = `<html><body>
<div class="m6QErb">
  <div data-review-id="abc" class="jftiEf">
    <div data-review-id="abc" class="inner">
      <div class="d4r55">Jane Diner</div>
      <span class="kvMYJc" role="img" aria-label="5 stars"></span>
      <span class="rsqaWe">2 weeks ago</span>
      <span class="wiI7pd">The shrimp was delicious and fresh!</span>
    </div>
  </div>
  <div data-review-id="def">
    <div class="d4r55">Sam</div>
    <span role="img" aria-label="1 star"></span>
    <span class="rsqaWe">a month ago</span>
    <span class="wiI7pd">We waited an hour. Rude staff.</span>
  </div>
</div>
</body></html>`

const yelpPage = `<html><body>
<ul>
  <li><div class="review">
    <a href="/user_details?userid=1">Pat K.</a>
    <div role="img" aria-label="4.5 star rating"></div>
    <span class="css-chan6m">3/15/2024</span>
    <p class="comment"><span class="raw__09f24__T4Ezm">Great value for the money.</span></p>
  </div></li>
  <li><div class="review">
    <a href="/user_details?userid=2">Lee</a>
    <div class="i-stars stars_20"></div>
    <span class="rating-qualifier">2024-02-01</span>
    <p class="comment">Overpriced and bland.</p>
  </div></li>
</ul>
</body></html>`

const tripAdvisorPage = `<html><body>
<div class="reviewSelector" id="r1">
  <div class="info_text"><div>Traveler123</div></div>
  <span class="ui_bubble_rating bubble_40"></span>
  <span class="ratingDate" title="March 3, 2024">Reviewed 2 weeks ago</span>
  <a href="/ShowUserReviews-g1-d2-r1.html"><span class="noQuotes">Sunset dinner</span></a>
  <p class="partial_entry">Beautiful view of the marsh at sunset...More</p>
</div>
<div class="reviewSelector" id="r2">
  <div class="info_text"></div>
  <span class="ui_bubble_rating bubble_10"></span>
  <span class="relativeDate">yesterday</span>
  <p class="partial_entry">Dirty tables and a dirty floor.</p>
</div>
</body></html>`

const jsonLDPage = `<html><head>
<script type="application/ld+json">{"broken": </script>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Restaurant","name":"Marsh Shack",
 "review":[
  {"@type":"Review","author":{"@type":"Person","name":"Alex"},"datePublished":"2024-04-02",
   "reviewRating":{"@type":"Rating","ratingValue":"8","bestRating":"10"},
   "name":"Solid","reviewBody":"Good food, slow service."},
  {"@type":"Review","author":"Robin","datePublished":"2024-04-05",
   "reviewRating":{"ratingValue":2},"description":"Cold fries."}
 ]}
</script></head><body><p>No markup reviews here</p></body></html>`

func pages(m map[string]string) Fetcher {
	return FetcherFunc(func(ctx context.Context, rawURL string) (string, error) {
		content, ok := m[rawURL]
		if !ok {
			return "", errors.New("unexpected status: 404 404 Not Found")
		}
		return content, nil
	})
}

func TestRegistry_FindSource(t *testing.T) {
	r := NewRegistry(pages(nil), nil)

	tests := []struct {
		url  string
		want model.Platform
	}{
		{"https://www.google.com/maps/place/Marsh+Shack", model.PlatformGoogle},
		{"https://maps.google.com/?cid=123", model.PlatformGoogle},
		{"https://www.yelp.com/biz/marsh-shack", model.PlatformYelp},
		{"https://www.tripadvisor.com/Restaurant_Review-g1-d2.html", model.PlatformTripAdvisor},
		{"https://example.com/reviews", ""},
		{"https://notyelp.com/biz/x", ""},
	}

	for _, tt := range tests {
		if got := r.FindSource(tt.url).Platform(); got != tt.want {
			t.Errorf("FindSource(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}

	src, err := r.ForPlatform(model.PlatformYelp)
	if err != nil || src.Platform() != model.PlatformYelp {
		t.Errorf("ForPlatform(Yelp) = %v, %v", src, err)
	}
	if _, err := r.ForPlatform("MySpace"); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestGoogleSource_FetchReviewElements(t *testing.T) {
	url := "https://www.google.com/maps/place/x"
	src := NewGoogleSource(pages(map[string]string{url: googlePage}), nil)

	reviews, err := src.FetchReviewElements(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews (nested id not duplicated), got %d", len(reviews))
	}

	first := reviews[0]
	if first.ReviewerName != "Jane Diner" || first.Rating != "5" || first.Date != "2 weeks ago" {
		t.Errorf("unexpected first review: %+v", first)
	}
	if first.Text != "The shrimp was delicious and fresh!" || first.URL != url {
		t.Errorf("unexpected first review text/url: %+v", first)
	}
	if reviews[1].Rating != "1" {
		t.Errorf("expected rating 1, got %q", reviews[1].Rating)
	}
}

func TestYelpSource_FetchReviewElements(t *testing.T) {
	url := "https://www.yelp.com/biz/x"
	src := NewYelpSource(pages(map[string]string{url: yelpPage}), nil)

	reviews, err := src.FetchReviewElements(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	if reviews[0].ReviewerName != "Pat K." || reviews[0].Rating != "4.5" || reviews[0].Date != "3/15/2024" {
		t.Errorf("unexpected first review: %+v", reviews[0])
	}
	if reviews[0].Text != "Great value for the money." {
		t.Errorf("unexpected first text: %q", reviews[0].Text)
	}
	if reviews[1].Rating != "2" || reviews[1].Date != "2024-02-01" || reviews[1].Text != "Overpriced and bland." {
		t.Errorf("unexpected legacy review: %+v", reviews[1])
	}
}

func TestTripAdvisorSource_FetchReviewElements(t *testing.T) {
	url := "https://www.tripadvisor.com/Restaurant_Review-g1-d2.html"
	src := NewTripAdvisorSource(pages(map[string]string{url: tripAdvisorPage}), nil)

	reviews, err := src.FetchReviewElements(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	first := reviews[0]
	if first.ReviewerName != "Traveler123" || first.Rating != "4" || first.Date != "March 3, 2024" {
		t.Errorf("unexpected first review: %+v", first)
	}
	if first.Title != "Sunset dinner" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.URL != "https://www.tripadvisor.com/ShowUserReviews-g1-d2-r1.html" {
		t.Errorf("unexpected review URL: %q", first.URL)
	}

	second := reviews[1]
	if second.ReviewerName != "" || second.Rating != "1" || second.Date != "yesterday" || second.URL != url {
		t.Errorf("unexpected second review: %+v", second)
	}
}

func TestSource_FallsBackToJSONLD(t *testing.T) {
	url := "https://www.yelp.com/biz/jsonld"
	src := NewYelpSource(pages(map[string]string{url: jsonLDPage}), nil)

	reviews, err := src.FetchReviewElements(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 JSON-LD reviews, got %d", len(reviews))
	}

	if reviews[0].ReviewerName != "Alex" || reviews[0].Rating != "4" || reviews[0].Title != "Solid" {
		t.Errorf("unexpected first review: %+v", reviews[0])
	}
	if reviews[1].ReviewerName != "Robin" || reviews[1].Rating != "2" || reviews[1].Text != "Cold fries." {
		t.Errorf("unexpected second review: %+v", reviews[1])
	}
	if reviews[1].URL != url {
		t.Errorf("expected page URL fallback, got %q", reviews[1].URL)
	}
}

func TestSource_Errors(t *testing.T) {
	empty := "https://www.yelp.com/biz/empty"
	src := NewYelpSource(pages(map[string]string{empty: "<html><body><p>Closed</p></body></html>"}), nil)

	if _, err := src.FetchReviewElements(context.Background(), empty); !errors.Is(err, ErrNoReviews) {
		t.Errorf("expected ErrNoReviews, got %v", err)
	}

	_, err := src.FetchReviewElements(context.Background(), "https://www.yelp.com/biz/missing")
	if err == nil || !strings.Contains(err.Error(), "fetch Yelp page") {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
}

func TestSource_FetchPageText(t *testing.T) {
	url := "https://example.com/page"
	page := `<html><head><title>T</title><style>p{}</style></head>
<body><h1>Marsh  Shack</h1><script>var x = 1;</script><p>Open daily</p></body></html>`
	src := NewGenericSource(pages(map[string]string{url: page}), nil)

	text, err := src.FetchPageText(context.Background(), url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Marsh Shack Open daily" {
		t.Errorf("unexpected page text: %q", text)
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	n := NewNormalizer(now)
	engine := classify.NewEngine(lexicon.Default(), classify.RatingAwarePolicy)

	rec := n.Normalize(model.PlatformGoogle, model.RawReview{
		ReviewerName: "  ",
		Date:         "2 weeks ago",
		Rating:       "5 stars",
		Text:         "Ｔhe  shrimp was terrible... More",
	}, engine)

	if rec.ReviewerName != model.DefaultReviewerName {
		t.Errorf("expected Anonymous, got %q", rec.ReviewerName)
	}
	if rec.DateString() != "2024-06-01" {
		t.Errorf("unexpected date: %s", rec.DateString())
	}
	if rec.Rating != 5 {
		t.Errorf("unexpected rating: %v", rec.Rating)
	}
	if rec.Text != "The shrimp was terrible" {
		t.Errorf("unexpected text: %q", rec.Text)
	}
	if rec.Category != "Food Quality" {
		t.Errorf("unexpected category: %q", rec.Category)
	}
	// the five-star rating wins over the text
	if rec.Sentiment != model.SentimentPositive {
		t.Errorf("unexpected sentiment: %s", rec.Sentiment)
	}

	unlabelled := n.Normalize(model.PlatformYelp, model.RawReview{Text: "ok"}, nil)
	if unlabelled.IsClassified() {
		t.Errorf("expected no labels without a classifier, got %+v", unlabelled)
	}
	if unlabelled.DateString() != "2024-06-15" {
		t.Errorf("expected missing date to default to today, got %s", unlabelled.DateString())
	}
}

func TestNormalizer_NormalizeAll(t *testing.T) {
	n := NewNormalizer(nil)
	recs := n.NormalizeAll(model.PlatformTripAdvisor, []model.RawReview{{Text: "a"}, {Text: "b"}}, nil)
	if len(recs) != 2 || recs[0].Platform != model.PlatformTripAdvisor || recs[1].Text != "b" {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"5", 5},
		{"4.5 star rating", 4.5},
		{"Rated 3,5 out of 5", 3.5},
		{"1 star", 1},
		{"0", 0},
		{"", 0},
		{"N/A", 0},
		{"45", 0},
	}

	for _, tt := range tests {
		if got := ParseRating(tt.raw); got != tt.want {
			t.Errorf("ParseRating(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"  plain   text ", "plain text"},
		{"ﬁsh tacos", "fish tacos"},
		{"ＦＯＯＤ", "FOOD"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanText(tt.raw); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
