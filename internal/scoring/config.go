// Package scoring implements the suggestion scoring engine core: the
// demographic risk multiplier, the per-candidate confidence and priority
// scorer, and the result synthesizer. It is intentionally dependency-light:
// apart from internal/extract it imports nothing from internal/ and can be
// tested without a database or network.
package scoring

import (
	"fmt"
)

// Config holds every tunable constant used by the scorer and synthesizer.
// The values were tuned empirically in production; they are injected rather
// than hard-coded so they can be adjusted and unit-tested independently of
// the scoring logic.
type Config struct {
	// ── Confidence factor caps ───────────────────────────────────────────────
	KeywordMatchCap       float64 // max points from description-word matching
	SpecificityPerMarker  float64 // points per clinical specificity marker
	SpecificityCap        float64
	DocQualityPerMarker   float64 // points per documentation marker
	DocQualityCap         float64
	ConditionClarityBonus float64 // diagnosis appears verbatim in description
	AdvisorBoostCap       float64 // advisor opportunity confidence × this

	// ── Demographic relevance ────────────────────────────────────────────────
	DemographicHighCut   float64 // multiplier above this earns the high bonus
	DemographicHighBonus float64
	DemographicLowBonus  float64 // multiplier in (1.0, HighCut]

	// ── Confidence clamps ────────────────────────────────────────────────────
	BaseConfidenceMin  float64
	BaseConfidenceMax  float64
	FinalConfidenceMin float64
	FinalConfidenceMax float64
	ConfidenceScaleCap float64 // demographic scaling factor ceiling

	// ── Priority score ───────────────────────────────────────────────────────
	RAFHighThreshold     float64 // baseline RAF above this earns RAFHighPoints
	RAFMidThreshold      float64
	RAFHighPoints        int
	RAFMidPoints         int
	RAFLowPoints         int
	MedicareAge          int // patients at or above this age earn MedicarePoints
	MedicarePoints       int
	HighMultiplierCut    float64
	HighMultiplierPoints int
	UrgencyPoints        int
	AdvisorAgePoints     int // advisor reports age_impact == "high"
	AdvisorComorbPoints  int // advisor comorbidity risk mentions "high"
	PriorityHighCut      int // priority score above this → HIGH
	PriorityMediumCut    int // above this → MEDIUM, else LOW

	// ── Demographic multiplier bounds ────────────────────────────────────────
	MultiplierMin float64
	MultiplierMax float64

	// ── Synthesis ────────────────────────────────────────────────────────────
	RevenuePerRAFPoint    float64 // annual dollars per RAF point
	MaxSuggestions        int
	OverallConfidenceHigh float64 // mean confidence above this → HIGH label
	OverallConfidenceMid  float64
	HighRiskWarningCut    float64 // multiplier above this adds the risk warning
}

// DefaultConfig returns the production constants. The priority thresholds
// (80/50) and factor caps are kept exactly as tuned — change them only with
// a recalibration pass over historical sessions.
func DefaultConfig() Config {
	return Config{
		KeywordMatchCap:       30,
		SpecificityPerMarker:  5,
		SpecificityCap:        25,
		DocQualityPerMarker:   2,
		DocQualityCap:         20,
		ConditionClarityBonus: 15,
		AdvisorBoostCap:       20,

		DemographicHighCut:   1.2,
		DemographicHighBonus: 10,
		DemographicLowBonus:  5,

		BaseConfidenceMin:  35,
		BaseConfidenceMax:  95,
		FinalConfidenceMin: 40,
		FinalConfidenceMax: 95,
		ConfidenceScaleCap: 1.3,

		RAFHighThreshold:     0.4,
		RAFMidThreshold:      0.2,
		RAFHighPoints:        35,
		RAFMidPoints:         20,
		RAFLowPoints:         10,
		MedicareAge:          65,
		MedicarePoints:       15,
		HighMultiplierCut:    1.5,
		HighMultiplierPoints: 10,
		UrgencyPoints:        25,
		AdvisorAgePoints:     15,
		AdvisorComorbPoints:  10,
		PriorityHighCut:      80,
		PriorityMediumCut:    50,

		MultiplierMin: 0.3,
		MultiplierMax: 3.0,

		RevenuePerRAFPoint:    17000,
		MaxSuggestions:        10,
		OverallConfidenceHigh: 80,
		OverallConfidenceMid:  60,
		HighRiskWarningCut:    1.3,
	}
}

// Validate checks internal consistency. Call once at startup, not per request.
func (c Config) Validate() error {
	if c.MultiplierMin <= 0 || c.MultiplierMax < c.MultiplierMin {
		return fmt.Errorf("scoring config: multiplier bounds [%v, %v] invalid", c.MultiplierMin, c.MultiplierMax)
	}
	if c.BaseConfidenceMin > c.BaseConfidenceMax {
		return fmt.Errorf("scoring config: base confidence bounds [%v, %v] invalid", c.BaseConfidenceMin, c.BaseConfidenceMax)
	}
	if c.FinalConfidenceMin > c.FinalConfidenceMax {
		return fmt.Errorf("scoring config: final confidence bounds [%v, %v] invalid", c.FinalConfidenceMin, c.FinalConfidenceMax)
	}
	if c.PriorityMediumCut >= c.PriorityHighCut {
		return fmt.Errorf("scoring config: priority cut medium=%d must be below high=%d", c.PriorityMediumCut, c.PriorityHighCut)
	}
	if c.RAFMidThreshold >= c.RAFHighThreshold {
		return fmt.Errorf("scoring config: RAF threshold mid=%v must be below high=%v", c.RAFMidThreshold, c.RAFHighThreshold)
	}
	if c.RevenuePerRAFPoint <= 0 {
		return fmt.Errorf("scoring config: revenue per RAF point must be positive, got %v", c.RevenuePerRAFPoint)
	}
	if c.MaxSuggestions <= 0 {
		return fmt.Errorf("scoring config: max suggestions must be positive, got %d", c.MaxSuggestions)
	}
	return nil
}
