package scoring

import (
	"fmt"
	"math"
	"strings"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Priority is the coarse urgency tier, distinct from confidence. String
// values match what the presentation layer renders.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// priorityWeight orders tiers for sorting.
func priorityWeight(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// Candidate is the slice of a code-mapping record the scorer needs. Its
// field types are plain Go types so the package stays free of store imports;
// the engine maps catalog records into it.
type Candidate struct {
	Code        string
	Description string
	Category    string // HCC category label, or "No HCC"
	BaselineRAF float64
}

// NoCategory is the Category value for codes that map to no HCC group.
const NoCategory = "No HCC"

// Eligible reports whether the candidate maps to a real HCC category with a
// positive baseline RAF — the precondition for any revenue estimate.
func (c Candidate) Eligible() bool {
	return c.Category != NoCategory && c.Category != "" && c.BaselineRAF > 0
}

// Hint is the advisory output of the external clinical model. It is optional
// end to end: a nil *Hint selects the pure rule-based path and every hint
// field is additive only — it can raise a candidate's confidence or priority
// but never gates scoring.
type Hint struct {
	CategoryOpportunities []CategoryOpportunity
	RiskAssessment        RiskAssessment

	// DocumentationNotes are model-suggested documentation additions; they
	// replace the generic additional-documentation tips when present.
	DocumentationNotes []string

	// Assessment is the model's overall summary, surfaced as a
	// recommendation line.
	Assessment string
}

// CategoryOpportunity is one HCC category the external model flagged.
type CategoryOpportunity struct {
	Category   string  // e.g. "HCC 18"
	Confidence float64 // [0, 1]
	RiskNote   string  // model-authored clinical reasoning
}

// RiskAssessment is the model's coarse demographic read.
type RiskAssessment struct {
	AgeImpact       string // "high" / "medium" / "low"
	ComorbidityRisk string // free text; "high" anywhere in it adds priority
}

// opportunityFor returns the first opportunity referencing the candidate's
// category, matching on the numeric part of the HCC label. First match wins.
func (h *Hint) opportunityFor(category string) (CategoryOpportunity, bool) {
	if h == nil || category == "" || category == NoCategory {
		return CategoryOpportunity{}, false
	}
	num := strings.TrimSpace(strings.TrimPrefix(category, "HCC"))
	if num == "" {
		return CategoryOpportunity{}, false
	}
	for _, opp := range h.CategoryOpportunities {
		if strings.Contains(opp.Category, num) {
			return opp, true
		}
	}
	return CategoryOpportunity{}, false
}

// Input is everything the scorer needs beyond the candidate itself. FullText
// is the lower-cased concatenation of diagnosis, notes, and history built by
// the engine; Multiplier comes from Config.RiskMultiplier.
type Input struct {
	FullText   string
	Diagnosis  string
	Multiplier float64
	Profile    Profile
	Hint       *Hint
}

// Scored is the fully computed output for a single candidate. Immutable once
// returned; the synthesizer turns it into a presentation Suggestion.
type Scored struct {
	Candidate

	Confidence          float64 // final, demographic-scaled, within clamp bounds
	AdjustedRAF         float64 // baseline RAF × multiplier, not clamped
	Priority            Priority
	PriorityExplanation string

	// AdvisorConfidence is the matched opportunity's raw confidence in [0,1],
	// 0 when no opportunity matched.
	AdvisorConfidence float64
	// AdvisorReasoning is the matched opportunity's risk note, "" otherwise.
	AdvisorReasoning string
}

// ─── MARKER TABLES ────────────────────────────────────────────────────────────

var specificityMarkers = []string{
	"chronic", "acute", "severe", "moderate", "stage", "type", "with",
	"ejection fraction", "bnp", "creatinine",
}

var documentationMarkers = []string{
	"patient", "history", "examination", "assessment", "plan", "monitor",
	"treatment", "medication", "lab", "vital",
}

var urgencyMarkers = []string{
	"severe", "acute", "emergency", "critical", "advanced",
	"reduced ejection fraction", "stage 4", "stage 5",
}

// ─── SCORER ──────────────────────────────────────────────────────────────────

// Score computes confidence, adjusted RAF, and priority for one candidate.
// Pure: identical inputs always produce identical outputs.
func (c Config) Score(cand Candidate, in Input) Scored {
	text := strings.ToLower(in.FullText)

	// Confidence: weighted sum of independent capped factors.
	confidence := c.keywordMatchScore(cand, text)
	confidence += math.Min(c.SpecificityCap, float64(countMarkers(text, specificityMarkers))*c.SpecificityPerMarker)
	confidence += math.Min(c.DocQualityCap, float64(countMarkers(text, documentationMarkers))*c.DocQualityPerMarker)
	if strings.Contains(strings.ToLower(cand.Description), strings.ToLower(strings.TrimSpace(in.Diagnosis))) && strings.TrimSpace(in.Diagnosis) != "" {
		confidence += c.ConditionClarityBonus
	}

	advisorConf := 0.0
	advisorNote := ""
	if opp, ok := in.Hint.opportunityFor(cand.Category); ok {
		advisorConf = math.Min(1, math.Max(0, opp.Confidence))
		advisorNote = opp.RiskNote
		confidence += advisorConf * c.AdvisorBoostCap
	}

	switch {
	case in.Multiplier > c.DemographicHighCut:
		confidence += c.DemographicHighBonus
	case in.Multiplier > 1.0:
		confidence += c.DemographicLowBonus
	}

	base := clampFloat(confidence, c.BaseConfidenceMin, c.BaseConfidenceMax)
	final := clampFloat(base*math.Min(c.ConfidenceScaleCap, in.Multiplier), c.FinalConfidenceMin, c.FinalConfidenceMax)

	adjustedRAF := cand.BaselineRAF * in.Multiplier

	priority, explanation := c.prioritize(cand, in, text)

	return Scored{
		Candidate:           cand,
		Confidence:          final,
		AdjustedRAF:         adjustedRAF,
		Priority:            priority,
		PriorityExplanation: explanation,
		AdvisorConfidence:   advisorConf,
		AdvisorReasoning:    advisorNote,
	}
}

// keywordMatchScore is the fraction of the candidate description's words
// found verbatim in the full text, scaled to KeywordMatchCap.
func (c Config) keywordMatchScore(cand Candidate, text string) float64 {
	words := strings.Fields(strings.ToLower(cand.Description))
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(words)) * c.KeywordMatchCap
}

// prioritize computes the priority tier from a separate accumulator — the
// priority score never feeds back into confidence.
func (c Config) prioritize(cand Candidate, in Input, text string) (Priority, string) {
	score := 0

	switch {
	case cand.BaselineRAF > c.RAFHighThreshold:
		score += c.RAFHighPoints
	case cand.BaselineRAF > c.RAFMidThreshold:
		score += c.RAFMidPoints
	default:
		score += c.RAFLowPoints
	}

	if in.Profile.Age != nil && *in.Profile.Age >= c.MedicareAge {
		score += c.MedicarePoints
	}
	if in.Multiplier > c.HighMultiplierCut {
		score += c.HighMultiplierPoints
	}
	if countMarkers(text, urgencyMarkers) > 0 {
		score += c.UrgencyPoints
	}
	if in.Hint != nil {
		if strings.EqualFold(in.Hint.RiskAssessment.AgeImpact, "high") {
			score += c.AdvisorAgePoints
		}
		if strings.Contains(strings.ToLower(in.Hint.RiskAssessment.ComorbidityRisk), "high") {
			score += c.AdvisorComorbPoints
		}
	}

	age := "unknown"
	if in.Profile.Age != nil {
		age = fmt.Sprintf("%d", *in.Profile.Age)
	}

	switch {
	case score > c.PriorityHighCut:
		return PriorityHigh, fmt.Sprintf(
			"Critical: high RAF (%.3f), age %s, significant clinical factors", cand.BaselineRAF, age)
	case score > c.PriorityMediumCut:
		return PriorityMedium, fmt.Sprintf(
			"Important: moderate RAF (%.3f), demographic risk factor %.2f", cand.BaselineRAF, in.Multiplier)
	default:
		return PriorityLow, fmt.Sprintf(
			"Review: lower RAF (%.3f), verify coding accuracy", cand.BaselineRAF)
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

// countMarkers counts how many of the markers occur in the text. Each marker
// counts once regardless of how often it repeats.
func countMarkers(text string, markers []string) int {
	n := 0
	for _, m := range markers {
		if strings.Contains(text, m) {
			n++
		}
	}
	return n
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
