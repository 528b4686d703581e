// Package catalog owns the ICD-10 → HCC reference data: the mapping rows,
// the Store implementations that serve them (Postgres for deployments,
// in-memory for tests and local runs), and the Searcher that turns extracted
// condition keywords into a ranked candidate list.
//
// Dependency rule: catalog imports nothing from the rest of the application.
// engine and api depend on catalog, never the other way around.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// Mapping is one reference row: an ICD-10 code with its HCC category and the
// risk-adjustment values used downstream for scoring and revenue estimates.
type Mapping struct {
	Code               string  `json:"icd_code"`
	Description        string  `json:"description"`
	Category           string  `json:"hcc_category"`
	RAF                float64 `json:"raf_value"`
	AnnualImpactDollar int     `json:"annual_impact"`
}

// NoCategory is the Category value for codes that carry no HCC weight.
const NoCategory = "No HCC"

// Eligible reports whether the mapping contributes risk-adjustment value.
func (m Mapping) Eligible() bool {
	return m.Category != NoCategory && m.Category != "" && m.RAF > 0
}

// ErrCodeNotFound is returned by Lookup for codes absent from the catalog.
var ErrCodeNotFound = errors.New("catalog: code not found")

// Store is the read surface over the mapping table. Both implementations
// return rows ordered by RAF descending, code ascending, so the Searcher's
// ranking is deterministic regardless of backend.
type Store interface {
	// SearchCategory returns every mapping belonging to one of the privileged
	// condition families (heart, diabetes, kidney).
	SearchCategory(ctx context.Context, cat Category) ([]Mapping, error)

	// SearchKeyword returns mappings whose description or code contains the
	// term, case-insensitively.
	SearchKeyword(ctx context.Context, term string) ([]Mapping, error)

	// Lookup returns the mapping for an exact code, or ErrCodeNotFound.
	Lookup(ctx context.Context, code string) (Mapping, error)
}

// ─── CONDITION CATEGORIES ────────────────────────────────────────────────────

// Category identifies a privileged condition family with its own broad query.
type Category string

const (
	CategoryHeart    Category = "heart"
	CategoryDiabetes Category = "diabetes"
	CategoryKidney   Category = "kidney"
)

// categorySpec describes how a privileged category matches mapping rows:
// description substrings plus an ICD code prefix.
type categorySpec struct {
	descTerms  []string
	codePrefix string
}

var categorySpecs = map[Category]categorySpec{
	CategoryHeart:    {[]string{"heart", "cardiac", "coronary", "myocardial", "ischemic"}, "I"},
	CategoryDiabetes: {[]string{"diabetes", "diabetic"}, "E1"},
	CategoryKidney:   {[]string{"kidney", "renal", "nephropathy"}, "N18"},
}

// matches reports whether a mapping row belongs to the category. Shared by
// the memory store and the tests; the Postgres store expresses the same
// predicate in SQL.
func (s categorySpec) matches(m Mapping) bool {
	desc := strings.ToLower(m.Description)
	for _, term := range s.descTerms {
		if strings.Contains(desc, term) {
			return true
		}
	}
	return strings.HasPrefix(m.Code, s.codePrefix)
}
