package source

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/reviewlens/internal/model"
	"golang.org/x/net/html"
)

// ExtractJSONLD collects schema.org Review objects from the page's
// application/ld+json blocks, wherever they are nested
func ExtractJSONLD(doc *html.Node, pageURL string) []model.RawReview {
	var reviews []model.RawReview
	goquery.NewDocumentFromNode(doc).
		Find(`script[type="application/ld+json"]`).
		Each(func(_ int, script *goquery.Selection) {
			var data any
			if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
				return // malformed blocks are common; skip them
			}
			collectReviews(data, pageURL, &reviews)
		})
	return reviews
}

func collectReviews(v any, pageURL string, out *[]model.RawReview) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			collectReviews(item, pageURL, out)
		}
	case map[string]any:
		if isType(node["@type"], "Review") {
			*out = append(*out, reviewFromJSONLD(node, pageURL))
			return
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectReviews(node[k], pageURL, out)
		}
	}
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func reviewFromJSONLD(obj map[string]any, pageURL string) model.RawReview {
	r := model.RawReview{
		ReviewerName: nameOf(obj["author"]),
		Date:         stringOf(obj["datePublished"]),
		Title:        stringOf(obj["name"]),
		Text:         stringOf(obj["reviewBody"]),
		URL:          stringOf(obj["url"]),
	}
	if r.Text == "" {
		r.Text = stringOf(obj["description"])
	}
	if r.URL == "" {
		r.URL = pageURL
	}
	if rating, ok := obj["reviewRating"].(map[string]any); ok {
		r.Rating = stringOf(rating["ratingValue"])
		// normalise ratings published on another scale, e.g. bestRating 10
		if best, err := strconv.ParseFloat(stringOf(rating["bestRating"]), 64); err == nil && best > 0 && best != model.MaxRating {
			if v, err := strconv.ParseFloat(r.Rating, 64); err == nil {
				r.Rating = strconv.FormatFloat(v/best*model.MaxRating, 'f', -1, 64)
			}
		}
	}
	return r
}

func nameOf(v any) string {
	switch t := v.(type) {
	case map[string]any:
		return stringOf(t["name"])
	case []any:
		if len(t) > 0 {
			return nameOf(t[0])
		}
	}
	return stringOf(v)
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
