// Package analytics records completed analyses for usage reporting. Writes
// happen off the request path through the Recorder; reads serve the daily
// summary endpoint.
//
// Dependency rule: analytics imports nothing from engine or api. The api
// package maps engine results into Entry values itself.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Entry is one completed analysis. Suggestions carries the serialized
// suggestion list so past analyses can be inspected without replaying them.
type Entry struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	Physician       string
	VisitType       string
	Diagnosis       string
	SuggestionCount int
	TopCode         string
	TopCategory     string
	TotalRAF        float64
	AdvisorUsed     bool
	OverallPriority string
	Suggestions     json.RawMessage
}

// DailyStat aggregates one calendar day of analyses.
type DailyStat struct {
	Day          string  `json:"day"` // YYYY-MM-DD
	Analyses     int     `json:"analyses"`
	MeanTotalRAF float64 `json:"mean_total_raf"`
	AdvisorUsed  int     `json:"advisor_used"`
}

// Store is the persistence surface for analysis records.
type Store interface {
	// Insert writes one entry. The store assigns ID and CreatedAt when they
	// are zero.
	Insert(ctx context.Context, e Entry) error

	// Daily returns per-day aggregates for the most recent days, newest
	// first.
	Daily(ctx context.Context, days int) ([]DailyStat, error)
}

// ─── POSTGRES ────────────────────────────────────────────────────────────────

// PostgresStore persists entries in the analysis_log table.
type PostgresStore struct {
	pool *sql.DB
}

func NewPostgresStore(pool *sql.DB) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the analysis_log table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_log (
			id               UUID PRIMARY KEY,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			physician        TEXT NOT NULL DEFAULT '',
			visit_type       TEXT NOT NULL DEFAULT '',
			diagnosis        TEXT NOT NULL,
			suggestion_count INTEGER NOT NULL,
			top_code         TEXT NOT NULL DEFAULT '',
			top_category     TEXT NOT NULL DEFAULT '',
			total_raf        DOUBLE PRECISION NOT NULL DEFAULT 0,
			advisor_used     BOOLEAN NOT NULL DEFAULT FALSE,
			overall_priority TEXT NOT NULL DEFAULT '',
			suggestions      JSONB
		)`)
	if err != nil {
		return fmt.Errorf("analytics: create analysis_log: %w", err)
	}
	_, err = s.pool.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS analysis_log_created_at_idx ON analysis_log (created_at)`)
	if err != nil {
		return fmt.Errorf("analytics: create analysis_log index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	suggestions := pqtype.NullRawMessage{
		RawMessage: e.Suggestions,
		Valid:      len(e.Suggestions) > 0,
	}

	_, err := s.pool.ExecContext(ctx, `
		INSERT INTO analysis_log
			(id, created_at, physician, visit_type, diagnosis, suggestion_count,
			 top_code, top_category, total_raf, advisor_used, overall_priority, suggestions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.CreatedAt, e.Physician, e.VisitType, e.Diagnosis, e.SuggestionCount,
		e.TopCode, e.TopCategory, e.TotalRAF, e.AdvisorUsed, e.OverallPriority, suggestions)
	if err != nil {
		return fmt.Errorf("analytics: insert entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Daily(ctx context.Context, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 7
	}

	rows, err := s.pool.QueryContext(ctx, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
		       count(*),
		       coalesce(avg(total_raf), 0),
		       count(*) FILTER (WHERE advisor_used)
		FROM analysis_log
		WHERE created_at >= now() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day DESC`, days)
	if err != nil {
		return nil, fmt.Errorf("analytics: daily summary: %w", err)
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.Day, &d.Analyses, &d.MeanTotalRAF, &d.AdvisorUsed); err != nil {
			return nil, fmt.Errorf("analytics: scan daily stat: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics: iterate daily stats: %w", err)
	}
	return out, nil
}

// ─── MEMORY ──────────────────────────────────────────────────────────────────

// MemoryStore keeps entries in a slice. Used in tests and when no database
// is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *MemoryStore) Daily(_ context.Context, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := make(map[string]*DailyStat)
	var order []string
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		day := e.CreatedAt.UTC().Format("2006-01-02")
		stat, ok := byDay[day]
		if !ok {
			stat = &DailyStat{Day: day}
			byDay[day] = stat
			order = append(order, day)
		}
		stat.Analyses++
		stat.MeanTotalRAF += e.TotalRAF
		if e.AdvisorUsed {
			stat.AdvisorUsed++
		}
	}

	// Newest first, mirroring the SQL ORDER BY.
	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	out := make([]DailyStat, 0, len(order))
	for _, day := range order {
		stat := byDay[day]
		stat.MeanTotalRAF /= float64(stat.Analyses)
		out = append(out, *stat)
	}
	return out, nil
}

// Entries returns a copy of everything recorded so far. Test helper.
func (s *MemoryStore) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
