package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore serves mappings from the hcc_mappings table.
type PostgresStore struct {
	pool *sql.DB
}

// NewPostgresStore wraps a live connection pool. The pool must already be
// open and verified before calling this.
func NewPostgresStore(pool *sql.DB) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const mappingCols = "icd_code, description, hcc_category, raf_value, annual_impact"

// EnsureSchema creates the mapping table if needed and seeds it when empty.
// Seeding runs in one transaction so a concurrent boot never half-populates
// the catalog.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hcc_mappings (
			icd_code      TEXT PRIMARY KEY,
			description   TEXT NOT NULL,
			hcc_category  TEXT NOT NULL,
			raf_value     DOUBLE PRECISION NOT NULL DEFAULT 0,
			annual_impact INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("catalog: create hcc_mappings: %w", err)
	}

	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT count(*) FROM hcc_mappings").Scan(&count); err != nil {
		return fmt.Errorf("catalog: count mappings: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, m := range SeedMappings() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hcc_mappings (icd_code, description, hcc_category, raf_value, annual_impact)
			VALUES ($1, $2, $3, $4, $5)`,
			m.Code, m.Description, m.Category, m.RAF, m.AnnualImpactDollar)
		if err != nil {
			return fmt.Errorf("catalog: seed %s: %w", m.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit seed: %w", err)
	}
	return nil
}

func (s *PostgresStore) SearchCategory(ctx context.Context, cat Category) ([]Mapping, error) {
	spec, ok := categorySpecs[cat]
	if !ok {
		return nil, nil
	}

	patterns := make([]string, 0, len(spec.descTerms))
	for _, term := range spec.descTerms {
		patterns = append(patterns, "%"+term+"%")
	}

	rows, err := s.pool.QueryContext(ctx, `
		SELECT `+mappingCols+` FROM hcc_mappings
		WHERE description ILIKE ANY($1) OR icd_code LIKE $2
		ORDER BY raf_value DESC, icd_code ASC`,
		pq.Array(patterns), spec.codePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("catalog: search category %s: %w", cat, err)
	}
	return scanMappings(rows)
}

func (s *PostgresStore) SearchKeyword(ctx context.Context, term string) ([]Mapping, error) {
	if term == "" {
		return nil, nil
	}
	rows, err := s.pool.QueryContext(ctx, `
		SELECT `+mappingCols+` FROM hcc_mappings
		WHERE description ILIKE $1 OR icd_code ILIKE $1
		ORDER BY raf_value DESC, icd_code ASC`,
		"%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("catalog: search keyword %q: %w", term, err)
	}
	return scanMappings(rows)
}

func (s *PostgresStore) Lookup(ctx context.Context, code string) (Mapping, error) {
	var m Mapping
	err := s.pool.QueryRowContext(ctx, `
		SELECT `+mappingCols+` FROM hcc_mappings WHERE upper(icd_code) = upper($1)`,
		code).Scan(&m.Code, &m.Description, &m.Category, &m.RAF, &m.AnnualImpactDollar)
	if errors.Is(err, sql.ErrNoRows) {
		return Mapping{}, ErrCodeNotFound
	}
	if err != nil {
		return Mapping{}, fmt.Errorf("catalog: lookup %q: %w", code, err)
	}
	return m, nil
}

func scanMappings(rows *sql.Rows) ([]Mapping, error) {
	defer rows.Close()

	var out []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Code, &m.Description, &m.Category, &m.RAF, &m.AnnualImpactDollar); err != nil {
			return nil, fmt.Errorf("catalog: scan mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate mappings: %w", err)
	}
	return out, nil
}
