// Package engine orchestrates one analysis request end to end: keyword
// extraction, catalog search, the optional advisory pass, scoring, and
// synthesis of the final result.
//
// Dependency rule: engine imports extract, catalog, scoring, and ai. It
// never imports api or analytics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siddhantborse/Alphaaudit-pro/internal/ai"
	"github.com/siddhantborse/Alphaaudit-pro/internal/catalog"
	"github.com/siddhantborse/Alphaaudit-pro/internal/extract"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// Request is one analysis job. PrimaryDiagnosis and ClinicalNotes are
// required; the handler validates before calling Analyze. Everything else is
// optional context that sharpens the demographic multiplier and the advisory
// pass.
type Request struct {
	PrimaryDiagnosis string
	ClinicalNotes    string
	MedicalHistory   string
	Age              *int
	Gender           string
	VisitType        string
	Medications      string
	LabValues        string
}

// Engine wires the pipeline stages together. Construct once at boot; Analyze
// is safe for concurrent use.
type Engine struct {
	cfg            scoring.Config
	searcher       *catalog.Searcher
	advisor        ai.Advisor
	advisorTimeout time.Duration
	logger         *slog.Logger
}

// New builds an Engine. advisor must be non-nil — pass ai.NoopAdvisor{} to
// run pure rule-based analysis.
func New(cfg scoring.Config, searcher *catalog.Searcher, advisor ai.Advisor, advisorTimeout time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:            cfg,
		searcher:       searcher,
		advisor:        advisor,
		advisorTimeout: advisorTimeout,
		logger:         logger,
	}
}

// Analyze runs the full pipeline. An unreachable advisor degrades silently
// to rule-based scoring; an empty candidate set is a valid result, not an
// error. The only error path is the catalog itself failing.
func (e *Engine) Analyze(ctx context.Context, req Request) (scoring.Result, error) {
	signals := extract.Extract(req.PrimaryDiagnosis, req.ClinicalNotes, req.MedicalHistory)
	keywords := searchKeywords(signals.Keywords, req.PrimaryDiagnosis)

	matches, err := e.searcher.Search(ctx, keywords)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("engine: catalog search: %w", err)
	}

	profile := scoring.Profile{Age: req.Age, Gender: req.Gender}
	multiplier := e.cfg.RiskMultiplier(profile, keywords)

	hint, advisorAvailable := e.advise(ctx, req)

	fullText := strings.ToLower(strings.Join([]string{
		req.PrimaryDiagnosis, req.ClinicalNotes, req.MedicalHistory,
	}, " "))

	in := scoring.Input{
		FullText:   fullText,
		Diagnosis:  req.PrimaryDiagnosis,
		Multiplier: multiplier,
		Profile:    profile,
		Hint:       hint,
	}

	scored := make([]scoring.Scored, 0, len(matches))
	for _, m := range matches {
		scored = append(scored, e.cfg.Score(scoring.Candidate{
			Code:        m.Code,
			Description: m.Description,
			Category:    m.Category,
			BaselineRAF: m.RAF,
		}, in))
	}

	return e.cfg.Synthesize(scoring.SynthesisInput{
		Scored:           scored,
		Signals:          signals,
		Profile:          profile,
		Multiplier:       multiplier,
		FullText:         fullText,
		Hint:             hint,
		AdvisorAvailable: advisorAvailable,
	}), nil
}

// advise runs the advisory pass under its own deadline. Failure is expected
// when no model is configured or the local server is down, so an
// unavailable advisor logs at debug while real failures log at warn.
func (e *Engine) advise(ctx context.Context, req Request) (*scoring.Hint, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.advisorTimeout)
	defer cancel()

	hint, err := e.advisor.Analyze(ctx, ai.Request{
		Age:              req.Age,
		Gender:           req.Gender,
		VisitType:        req.VisitType,
		PrimaryDiagnosis: req.PrimaryDiagnosis,
		ClinicalNotes:    req.ClinicalNotes,
		MedicalHistory:   req.MedicalHistory,
		Medications:      req.Medications,
		LabValues:        req.LabValues,
	})
	if err != nil {
		if errors.Is(err, ai.ErrAdvisorUnavailable) {
			e.logger.Debug("engine: advisor unavailable, using rule-based scoring")
		} else {
			e.logger.Warn("engine: advisory pass failed, using rule-based scoring",
				"error", err,
			)
		}
		return nil, false
	}
	return &hint, true
}

// searchKeywords appends the lower-cased primary diagnosis to the extracted
// keywords when it is not already present, so the catalog search always sees
// the clinician's own wording.
func searchKeywords(keywords []string, primaryDiagnosis string) []string {
	diag := strings.ToLower(strings.TrimSpace(primaryDiagnosis))
	out := make([]string, 0, len(keywords)+1)
	seen := make(map[string]bool, len(keywords)+1)
	for _, kw := range keywords {
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	if diag != "" && !seen[diag] {
		out = append(out, diag)
	}
	return out
}
