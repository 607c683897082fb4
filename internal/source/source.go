// Package source turns review pages into raw review fields. Each platform has
// an adapter that knows its markup; a generic adapter reads the schema.org
// JSON-LD every platform embeds.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/reviewlens/internal/classify"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/net/html"
)

// ErrNoReviews is returned when a page parsed cleanly but held no reviews
var ErrNoReviews = errors.New("no reviews found on page")

// Fetcher retrieves page HTML. The pipeline fetcher implements it with
// retries, caching and rate limiting.
type Fetcher interface {
	FetchHTML(ctx context.Context, rawURL string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, rawURL string) (string, error)

// FetchHTML calls f
func (f FetcherFunc) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

// Source is the fetch collaborator for one review platform
type Source interface {
	// Platform returns the platform this source scrapes; empty for the
	// generic fallback
	Platform() model.Platform

	// CanHandle checks if this source understands the given URL
	CanHandle(rawURL string) bool

	// FetchPageText returns the visible text of the page
	FetchPageText(ctx context.Context, rawURL string) (string, error)

	// FetchReviewElements returns one RawReview per review on the page
	FetchReviewElements(ctx context.Context, rawURL string) ([]model.RawReview, error)
}

// Classifying is implemented by sources that label reviews at extraction
// time. A nil Classifier means the source leaves labelling to the pipeline.
type Classifying interface {
	Classifier() classify.Classifier
}

// Registry manages platform sources
type Registry struct {
	sources []Source
	generic Source
}

// NewRegistry creates a registry with the built-in platform sources. When
// classifier is non-nil every source labels the reviews it extracts.
func NewRegistry(fetcher Fetcher, classifier classify.Classifier) *Registry {
	registry := &Registry{
		sources: make([]Source, 0, 3),
	}

	registry.Register(NewGoogleSource(fetcher, classifier))
	registry.Register(NewYelpSource(fetcher, classifier))
	registry.Register(NewTripAdvisorSource(fetcher, classifier))

	registry.generic = NewGenericSource(fetcher, classifier)

	return registry
}

// Register registers a new source
func (r *Registry) Register(src Source) {
	r.sources = append(r.sources, src)
}

// FindSource finds the source for the given URL, falling back to the generic
// JSON-LD source
func (r *Registry) FindSource(rawURL string) Source {
	for _, src := range r.sources {
		if src.CanHandle(rawURL) {
			return src
		}
	}
	return r.generic
}

// ForPlatform returns the registered source for a platform
func (r *Registry) ForPlatform(p model.Platform) (Source, error) {
	for _, src := range r.sources {
		if src.Platform() == p {
			return src, nil
		}
	}
	return nil, fmt.Errorf("no source registered for platform %q", p)
}

// hostMatches reports whether rawURL's host is domain or one of its subdomains
func hostMatches(rawURL string, domains ...string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// pageSource implements the fetch and text plumbing shared by every source.
// Platform adapters supply the review-extraction function.
type pageSource struct {
	BaseAdapter
	platform   model.Platform
	domains    []string
	fetcher    Fetcher
	classifier classify.Classifier
	extract    func(doc *html.Node, pageURL string) []model.RawReview
}

func (s *pageSource) Platform() model.Platform {
	return s.platform
}

func (s *pageSource) CanHandle(rawURL string) bool {
	if len(s.domains) == 0 {
		return true // generic fallback
	}
	return hostMatches(rawURL, s.domains...)
}

func (s *pageSource) Classifier() classify.Classifier {
	return s.classifier
}

func (s *pageSource) FetchPageText(ctx context.Context, rawURL string) (string, error) {
	doc, err := s.fetchDoc(ctx, rawURL)
	if err != nil {
		return "", err
	}
	body := s.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "body"
	})
	if body == nil {
		body = doc
	}
	return s.VisibleText(body), nil
}

func (s *pageSource) FetchReviewElements(ctx context.Context, rawURL string) ([]model.RawReview, error) {
	doc, err := s.fetchDoc(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	reviews := s.extract(doc, rawURL)
	if len(reviews) == 0 {
		// Markup changes often; structured data is the stable fallback
		reviews = ExtractJSONLD(doc, rawURL)
	}
	if len(reviews) == 0 {
		return nil, ErrNoReviews
	}
	return reviews, nil
}

func (s *pageSource) fetchDoc(ctx context.Context, rawURL string) (*html.Node, error) {
	content, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", s.label(), err)
	}
	doc, err := s.ParseHTML(content)
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", s.label(), err)
	}
	return doc, nil
}

func (s *pageSource) label() string {
	if s.platform == "" {
		return "generic"
	}
	return string(s.platform)
}

// NewGenericSource creates the fallback source that only reads JSON-LD
func NewGenericSource(fetcher Fetcher, classifier classify.Classifier) Source {
	return &pageSource{
		fetcher:    fetcher,
		classifier: classifier,
		extract:    ExtractJSONLD,
	}
}
