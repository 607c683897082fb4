package lexicon

import "sort"

// Default returns a fresh copy of the built-in restaurant lexicon
func Default() *Lexicon {
	return MustNew(defaultCategories(), defaultPositiveWords, defaultNegativeWords, defaultNegationWords)
}

// defaultCategories is built on every call so no caller can mutate shared data
func defaultCategories() []Category {
	return []Category{
		{
			Name: "Food Quality",
			Keywords: []string{
				"food", "dish", "meal", "taste", "flavor", "fresh", "cooked",
				"fried", "shrimp", "oyster", "seafood", "crab", "fish",
				"hush puppy", "frogmore", "delicious", "bland", "salty",
				"undercooked", "overcooked", "portion", "cold", "hot",
			},
		},
		{
			Name: "Wait Times",
			Keywords: []string{
				"wait", "time", "long", "slow", "quick", "fast", "delay",
				"minute", "hour", "promptly", "forever", "waited",
			},
		},
		{
			Name: "Pricing",
			Keywords: []string{
				"price", "expensive", "cheap", "cost", "worth", "value",
				"overpriced", "affordable", "$", "money",
			},
		},
		{
			Name: "Service",
			Keywords: []string{
				"service", "staff", "server", "waiter", "waitress", "bartender",
				"friendly", "rude", "attentive", "helpful", "manager", "owner",
			},
		},
		{
			Name: "Environment/Atmosphere",
			Keywords: []string{
				"atmosphere", "ambiance", "view", "scenery", "sunset", "noise",
				"loud", "quiet", "rustic", "charming", "comfortable", "cold",
				"hot", "temperature", "decor", "seating", "table", "outdoor",
				"indoor", "patio", "marsh", "water",
			},
		},
		{
			Name: "Product Availability",
			Keywords: []string{
				"out of", "sold out", "unavailable", "menu", "selection",
				"options", "available", "seasonal",
			},
		},
		{
			Name: "Cleanliness",
			Keywords: []string{
				"clean", "dirty", "bathroom", "restroom", "sanitary", "hygiene",
				"mess", "table", "floor", "wiped",
			},
		},
	}
}

// Multi-word entries ("not good") never equal a single token; they are kept
// so exported configs match the reference word lists.
var defaultPositiveWords = []string{
	"good", "great", "excellent", "amazing", "awesome", "fantastic",
	"wonderful", "delicious", "tasty", "friendly", "helpful", "perfect",
	"favorite", "best", "love", "enjoy", "recommend", "satisfied",
	"fresh", "clean", "nice", "attentive", "quick", "fast", "warm",
	"reasonable", "worth", "like", "pleasant", "beautiful",
}

var defaultNegativeWords = []string{
	"bad", "poor", "terrible", "awful", "horrible", "disappointing",
	"mediocre", "slow", "rude", "unfriendly", "dirty",
	"expensive", "overpriced", "cold", "undercooked", "overcooked",
	"bland", "salty", "greasy", "stale", "wait", "waited", "waiting",
	"never", "worst", "avoid", "mistake", "wrong", "unhappy", "upset",
	"sick", "dry", "tough", "hard", "not good", "not worth", "not fresh",
}

var defaultNegationWords = []string{
	"not", "no", "never", "none", "nobody", "nothing", "nowhere",
	"neither", "hardly", "barely", "scarcely", "didn't", "doesn't",
	"haven't", "hasn't", "hadn't", "can't", "couldn't", "won't",
	"wouldn't", "shouldn't", "isn't", "aren't", "wasn't", "weren't",
}

func sortedWords(set map[string]struct{}) []string {
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
