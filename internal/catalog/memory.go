package catalog

import (
	"context"
	"sort"
	"strings"
)

// MemoryStore serves mappings from a slice. Used by the test suites and by
// deployments that run without a database (DATABASE_URL unset).
type MemoryStore struct {
	rows []Mapping
}

// NewMemoryStore copies the given rows into a read-only store.
// NewMemoryStore(SeedMappings()) reproduces the bundled catalog.
func NewMemoryStore(rows []Mapping) *MemoryStore {
	copied := make([]Mapping, len(rows))
	copy(copied, rows)
	return &MemoryStore{rows: copied}
}

func (s *MemoryStore) SearchCategory(_ context.Context, cat Category) ([]Mapping, error) {
	spec, ok := categorySpecs[cat]
	if !ok {
		return nil, nil
	}
	var out []Mapping
	for _, m := range s.rows {
		if spec.matches(m) {
			out = append(out, m)
		}
	}
	orderByRAF(out)
	return out, nil
}

func (s *MemoryStore) SearchKeyword(_ context.Context, term string) ([]Mapping, error) {
	term = strings.ToLower(term)
	if term == "" {
		return nil, nil
	}
	var out []Mapping
	for _, m := range s.rows {
		if strings.Contains(strings.ToLower(m.Description), term) ||
			strings.Contains(strings.ToLower(m.Code), term) {
			out = append(out, m)
		}
	}
	orderByRAF(out)
	return out, nil
}

func (s *MemoryStore) Lookup(_ context.Context, code string) (Mapping, error) {
	for _, m := range s.rows {
		if strings.EqualFold(m.Code, code) {
			return m, nil
		}
	}
	return Mapping{}, ErrCodeNotFound
}

// orderByRAF sorts RAF descending with code ascending as the tie-break,
// matching the ORDER BY of the Postgres store.
func orderByRAF(rows []Mapping) {
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].RAF != rows[b].RAF {
			return rows[a].RAF > rows[b].RAF
		}
		return rows[a].Code < rows[b].Code
	})
}
