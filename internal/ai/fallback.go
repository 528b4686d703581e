package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// fallbackAdvisor wraps two Advisor implementations. It calls the primary
// first; if that returns an error it logs the failure and tries the
// secondary. This gives you local Ollama as the default with Gemini as the
// safety net (or vice versa — the choice is made in main.go).
type fallbackAdvisor struct {
	primary   Advisor
	secondary Advisor
	logger    *slog.Logger
}

// NewFallbackAdvisor returns an Advisor that calls primary and, on failure,
// falls back to secondary. Either argument may be nil — if primary is nil it
// goes straight to secondary; if secondary is nil and primary fails, the
// primary error is returned directly.
func NewFallbackAdvisor(primary, secondary Advisor, logger *slog.Logger) Advisor {
	return &fallbackAdvisor{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

// Analyze tries the primary Advisor. If it fails and a secondary is
// configured, it logs the primary error and tries the secondary.
func (f *fallbackAdvisor) Analyze(ctx context.Context, req Request) (scoring.Hint, error) {
	if f.primary != nil {
		hint, err := f.primary.Analyze(ctx, req)
		if err == nil {
			return hint, nil
		}
		f.logger.Warn("ai: primary advisor failed, trying secondary",
			"error", err,
		)
		if f.secondary == nil {
			return scoring.Hint{}, fmt.Errorf("ai: primary failed and no secondary configured: %w", err)
		}
	}

	if f.secondary == nil {
		return scoring.Hint{}, ErrAdvisorUnavailable
	}
	return f.secondary.Analyze(ctx, req)
}
