package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Match is a catalog row plus the relevance tier the search assigned to it.
// Rows found through a recognized condition family rank above rows found by
// the fallback substring search.
type Match struct {
	Mapping
	Relevance int
}

const (
	relevancePrimary  = 100
	relevanceFallback = 50

	// maxSearchKeywords bounds how many keywords fan out into store queries.
	maxSearchKeywords = 5

	// maxMatches bounds the candidate list handed to scoring.
	maxMatches = 8
)

// keywordFamily maps keyword substrings to the privileged condition
// categories. Checked in declaration order; "" marks a family that has no
// broad category query and falls back to a keyword search at primary
// relevance.
type keywordFamily struct {
	synonyms []string
	category Category
}

var keywordFamilies = []keywordFamily{
	{[]string{"heart", "cardiac", "coronary", "myocardial", "ischemic"}, CategoryHeart},
	{[]string{"diabetes", "diabetic"}, CategoryDiabetes},
	{[]string{"kidney", "renal", "nephropathy"}, CategoryKidney},
	{[]string{"failure"}, ""},
}

// Searcher turns extracted condition keywords into a bounded, ranked list of
// candidate mappings. Results are memoized in an LRU cache keyed on the
// keyword list — the catalog is read-only at runtime, so entries never go
// stale.
type Searcher struct {
	store Store
	cache *lru.Cache[string, []Match]
}

// NewSearcher builds a Searcher over the given store with an LRU of
// cacheSize keyword lists. cacheSize must be positive.
func NewSearcher(store Store, cacheSize int) (*Searcher, error) {
	cache, err := lru.New[string, []Match](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: create search cache: %w", err)
	}
	return &Searcher{store: store, cache: cache}, nil
}

// Search fans the first keywords out into store queries, deduplicates by
// code keeping the first relevance seen, and returns up to maxMatches rows
// ordered by relevance, RAF, and code.
func (s *Searcher) Search(ctx context.Context, keywords []string) ([]Match, error) {
	active := normalizeKeywords(keywords)
	if len(active) == 0 {
		return nil, nil
	}

	key := strings.Join(active, "|")
	if cached, ok := s.cache.Get(key); ok {
		out := make([]Match, len(cached))
		copy(out, cached)
		return out, nil
	}

	seen := make(map[string]bool)
	var matches []Match

	for _, kw := range active {
		family, primary := classifyKeyword(kw)

		var (
			rows []Mapping
			err  error
		)
		if family != "" {
			rows, err = s.store.SearchCategory(ctx, family)
		} else {
			rows, err = s.store.SearchKeyword(ctx, kw)
		}
		if err != nil {
			return nil, err
		}

		relevance := relevanceFallback
		if primary {
			relevance = relevancePrimary
		}
		for _, m := range rows {
			if seen[m.Code] {
				continue
			}
			seen[m.Code] = true
			matches = append(matches, Match{Mapping: m, Relevance: relevance})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Relevance != matches[b].Relevance {
			return matches[a].Relevance > matches[b].Relevance
		}
		if matches[a].RAF != matches[b].RAF {
			return matches[a].RAF > matches[b].RAF
		}
		return matches[a].Code < matches[b].Code
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	s.cache.Add(key, matches)

	out := make([]Match, len(matches))
	copy(out, matches)
	return out, nil
}

// classifyKeyword returns the privileged category for a keyword (empty when
// the keyword has no broad query) and whether the keyword ranks at primary
// relevance.
func classifyKeyword(kw string) (Category, bool) {
	for _, family := range keywordFamilies {
		for _, syn := range family.synonyms {
			if strings.Contains(kw, syn) {
				return family.category, true
			}
		}
	}
	return "", false
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, maxSearchKeywords)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == maxSearchKeywords {
			break
		}
	}
	return out
}
