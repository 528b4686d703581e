// Package ai defines the interface for the optional clinical-model advisory
// pass and provides Ollama- and Gemini-backed implementations.
package ai

import (
	"context"
	"errors"

	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// Request is the clinical picture handed to the advisor. Every field except
// PrimaryDiagnosis and ClinicalNotes may be empty.
type Request struct {
	Age              *int
	Gender           string
	VisitType        string
	PrimaryDiagnosis string
	ClinicalNotes    string
	MedicalHistory   string
	Medications      string
	LabValues        string
}

// Advisor is the interface the engine uses for the advisory pass. The
// concrete implementations live in ollama.go and gemini.go; tests inject
// stubs that return canned hints.
type Advisor interface {
	// Analyze returns the model's read of the clinical picture as a scoring
	// hint. Implementations must be safe to call concurrently.
	//
	// A non-nil error means no hint is available; the engine proceeds with
	// pure rule-based scoring and marks the analysis as degraded. Errors are
	// never surfaced to API callers.
	Analyze(ctx context.Context, req Request) (scoring.Hint, error)
}

// ErrAdvisorUnavailable is returned when no advisory backend is configured
// or the configured backend is not reachable.
var ErrAdvisorUnavailable = errors.New("ai: advisor unavailable")

// NoopAdvisor always reports unavailable. Used when neither Ollama nor
// Gemini is configured, so the engine never has to nil-check its advisor.
type NoopAdvisor struct{}

func (NoopAdvisor) Analyze(context.Context, Request) (scoring.Hint, error) {
	return scoring.Hint{}, ErrAdvisorUnavailable
}
