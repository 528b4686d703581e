package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/siddhantborse/Alphaaudit-pro/internal/extract"
)

// ─── OUTPUT TYPES ─────────────────────────────────────────────────────────────

// Suggestion is one ranked code recommendation, fully derived — nothing in it
// references mutable state, and it is owned by the Result that carries it.
type Suggestion struct {
	Code                  string   `json:"code"`
	Description           string   `json:"description"`
	Category              string   `json:"category"`
	AdjustedRAF           float64  `json:"adjusted_raf"`
	Confidence            float64  `json:"confidence"`
	Priority              Priority `json:"priority"`
	Reasoning             string   `json:"reasoning"`
	PriorityExplanation   string   `json:"priority_explanation"`
	SupportingText        string   `json:"supporting_text"`
	DemographicRiskFactor float64  `json:"demographic_risk_factor"`
	AdvisorConfidence     float64  `json:"advisor_confidence"`
	RevenueEstimate       int      `json:"revenue_estimate"`
	CategoryEligible      bool     `json:"category_eligible"`
	UseCaseHint           string   `json:"use_case_hint"`
	Alternatives          []string `json:"alternatives"`
}

// DemographicSummary is the human-facing demographic narrative. Only present
// when the request carried a complete profile.
type DemographicSummary struct {
	AgeGroup             string  `json:"age_group"`
	RiskMultiplier       float64 `json:"risk_multiplier"`
	AgeImpact            string  `json:"age_impact"`
	GenderConsiderations string  `json:"gender_considerations"`
}

// Comparison summarizes eligible vs non-eligible candidates for the
// code-upgrade guidance panel.
type Comparison struct {
	EligibleCount          int      `json:"eligible_count"`
	IneligibleCount        int      `json:"ineligible_count"`
	PotentialMissedRevenue int      `json:"potential_missed_revenue"`
	EligibleMeanRAF        float64  `json:"eligible_mean_raf"`
	TopRevenueCodes        []string `json:"top_revenue_codes"`
}

// Result is the complete analysis response, created fresh per request.
type Result struct {
	Suggestions             []Suggestion        `json:"suggestions"`
	Signals                 extract.Signals     `json:"extracted_conditions"`
	TotalRAF                float64             `json:"total_raf_impact"`
	Recommendations         []string            `json:"recommendations"`
	AdvisorAvailable        bool                `json:"ai_available"`
	OverallConfidence       string              `json:"overall_confidence"`
	OverallPriority         Priority            `json:"priority_level"`
	PotentialRevenue        string              `json:"potential_revenue_impact"`
	Demographics            *DemographicSummary `json:"demographic_analysis,omitempty"`
	ActionItems             []string            `json:"action_items"`
	AdditionalDocumentation []string            `json:"additional_documentation"`
	Comparison              Comparison          `json:"hcc_vs_non_hcc_comparison"`
	TopRevenueOpportunities []string            `json:"top_revenue_opportunities"`
	DocumentationTips       []string            `json:"documentation_improvement_tips"`
}

// SynthesisInput bundles everything the synthesizer consumes.
type SynthesisInput struct {
	Scored           []Scored
	Signals          extract.Signals
	Profile          Profile
	Multiplier       float64
	FullText         string
	Hint             *Hint
	AdvisorAvailable bool
}

// ─── SYNTHESIS ───────────────────────────────────────────────────────────────

// Synthesize ranks the scored candidates and assembles the final result:
// suggestions with reasoning, use-case hints and alternatives, aggregate
// labels, and the recommendation lists. Deterministic given its inputs.
func (c Config) Synthesize(in SynthesisInput) Result {
	ranked := make([]Scored, len(in.Scored))
	copy(ranked, in.Scored)

	// Priority tier first, confidence next, adjusted RAF last; code as the
	// final tie-break so equal scores still rank deterministically.
	sort.SliceStable(ranked, func(a, b int) bool {
		pa, pb := priorityWeight(ranked[a].Priority), priorityWeight(ranked[b].Priority)
		if pa != pb {
			return pa > pb
		}
		if ranked[a].Confidence != ranked[b].Confidence {
			return ranked[a].Confidence > ranked[b].Confidence
		}
		if ranked[a].AdjustedRAF != ranked[b].AdjustedRAF {
			return ranked[a].AdjustedRAF > ranked[b].AdjustedRAF
		}
		return ranked[a].Code < ranked[b].Code
	})

	if len(ranked) > c.MaxSuggestions {
		ranked = ranked[:c.MaxSuggestions]
	}

	suggestions := make([]Suggestion, 0, len(ranked))
	for _, s := range ranked {
		suggestions = append(suggestions, c.buildSuggestion(s, ranked, in))
	}

	result := Result{
		Suggestions:             suggestions,
		Signals:                 in.Signals,
		AdvisorAvailable:        in.AdvisorAvailable,
		Comparison:              c.buildComparison(suggestions),
		TopRevenueOpportunities: c.topRevenueOpportunities(suggestions),
		ActionItems:             c.actionItems(in.Profile),
		DocumentationTips:       c.documentationTips(in.Profile),
	}

	// Total RAF over the top three suggestions drives the headline revenue.
	totalRAF := 0.0
	for i, s := range suggestions {
		if i >= 3 {
			break
		}
		totalRAF += s.AdjustedRAF
	}
	result.TotalRAF = round3(totalRAF)
	result.PotentialRevenue = "$" + formatDollars(int(math.Round(totalRAF*c.RevenuePerRAFPoint)))

	result.OverallConfidence, result.OverallPriority = c.overallLabels(suggestions)
	result.Recommendations = c.recommendations(suggestions, in)
	result.AdditionalDocumentation = additionalDocumentation(in.Hint)

	if in.Profile.Complete() {
		result.Demographics = demographicSummary(in.Profile, in.Multiplier)
	}

	return result
}

// buildSuggestion derives the per-suggestion presentation fields from one
// scored candidate.
func (c Config) buildSuggestion(s Scored, all []Scored, in SynthesisInput) Suggestion {
	eligible := s.Eligible()

	revenue := 0
	if eligible {
		revenue = int(math.Round(s.AdjustedRAF * c.RevenuePerRAFPoint))
	}

	var alternatives []string
	if !eligible {
		alternatives = c.alternativesFor(s, all)
	}

	return Suggestion{
		Code:                  s.Code,
		Description:           s.Description,
		Category:              s.Category,
		AdjustedRAF:           round3(s.AdjustedRAF),
		Confidence:            round1(s.Confidence),
		Priority:              s.Priority,
		Reasoning:             c.reasoning(s, in.Multiplier),
		PriorityExplanation:   s.PriorityExplanation,
		SupportingText:        supportingText(s.Description, in.FullText),
		DemographicRiskFactor: in.Multiplier,
		AdvisorConfidence:     s.AdvisorConfidence,
		RevenueEstimate:       revenue,
		CategoryEligible:      eligible,
		UseCaseHint:           useCaseHint(s.Description),
		Alternatives:          alternatives,
	}
}

// reasoning concatenates the advisor note (when matched), a confidence-tier
// sentence, the demographic note, and the priority explanation.
func (c Config) reasoning(s Scored, multiplier float64) string {
	var parts []string

	if s.AdvisorReasoning != "" {
		parts = append(parts, "AI analysis: "+s.AdvisorReasoning)
	}

	switch {
	case s.Confidence > 80:
		parts = append(parts, "Strong clinical correlation with "+s.Description)
	case s.Confidence > 60:
		parts = append(parts, "Good match for "+s.Description)
	default:
		parts = append(parts, "Potential match requires clinical review")
	}

	if multiplier > c.DemographicHighCut {
		parts = append(parts, fmt.Sprintf("Demographic risk factors increase relevance (factor: %.2f)", multiplier))
	}

	return strings.Join(parts, ". ") + ". " + s.PriorityExplanation + "."
}

// alternativesFor finds up to two eligible candidates whose descriptions
// share at least one of the first three words of the ineligible candidate's
// description, formatted with code, category, and dollar estimate.
func (c Config) alternativesFor(s Scored, all []Scored) []string {
	words := strings.Fields(strings.ToLower(s.Description))
	if len(words) > 3 {
		words = words[:3]
	}

	var out []string
	for _, alt := range all {
		if !alt.Eligible() || alt.Code == s.Code {
			continue
		}
		desc := strings.ToLower(alt.Description)
		shared := false
		for _, w := range words {
			if strings.Contains(desc, w) {
				shared = true
				break
			}
		}
		if !shared {
			continue
		}
		dollars := int(math.Round(alt.BaselineRAF * c.RevenuePerRAFPoint))
		out = append(out, fmt.Sprintf("%s (%s, +$%s)", alt.Code, alt.Category, formatDollars(dollars)))
		if len(out) >= 2 {
			break
		}
	}
	return out
}

// buildComparison partitions suggestions by eligibility and aggregates the
// revenue picture.
func (c Config) buildComparison(suggestions []Suggestion) Comparison {
	cmp := Comparison{TopRevenueCodes: []string{}}

	var eligible []Suggestion
	for _, s := range suggestions {
		if s.CategoryEligible {
			eligible = append(eligible, s)
			cmp.PotentialMissedRevenue += s.RevenueEstimate
		} else {
			cmp.IneligibleCount++
		}
	}
	cmp.EligibleCount = len(eligible)

	if len(eligible) > 0 {
		sum := 0.0
		for _, s := range eligible {
			sum += s.AdjustedRAF
		}
		cmp.EligibleMeanRAF = round3(sum / float64(len(eligible)))

		byRevenue := make([]Suggestion, len(eligible))
		copy(byRevenue, eligible)
		sort.SliceStable(byRevenue, func(a, b int) bool {
			return byRevenue[a].RevenueEstimate > byRevenue[b].RevenueEstimate
		})
		for i, s := range byRevenue {
			if i >= 3 {
				break
			}
			cmp.TopRevenueCodes = append(cmp.TopRevenueCodes,
				fmt.Sprintf("%s: +$%s", s.Code, formatDollars(s.RevenueEstimate)))
		}
	}
	return cmp
}

func (c Config) topRevenueOpportunities(suggestions []Suggestion) []string {
	byRevenue := make([]Suggestion, len(suggestions))
	copy(byRevenue, suggestions)
	sort.SliceStable(byRevenue, func(a, b int) bool {
		return byRevenue[a].RevenueEstimate > byRevenue[b].RevenueEstimate
	})

	out := []string{}
	for i, s := range byRevenue {
		if i >= 5 {
			break
		}
		if !s.CategoryEligible {
			continue
		}
		out = append(out, fmt.Sprintf("%s (%s): +$%s/year - %s",
			s.Code, s.Category, formatDollars(s.RevenueEstimate), s.UseCaseHint))
	}
	return out
}

// overallLabels derives the aggregate confidence and priority labels.
func (c Config) overallLabels(suggestions []Suggestion) (string, Priority) {
	if len(suggestions) == 0 {
		return "LOW", PriorityLow
	}

	sum := 0.0
	priority := PriorityLow
	for _, s := range suggestions {
		sum += s.Confidence
		if priorityWeight(s.Priority) > priorityWeight(priority) {
			priority = s.Priority
		}
	}

	mean := sum / float64(len(suggestions))
	switch {
	case mean > c.OverallConfidenceHigh:
		return "HIGH", priority
	case mean > c.OverallConfidenceMid:
		return "MEDIUM", priority
	default:
		return "LOW", priority
	}
}

// recommendations builds the top-level advisory list: the top suggestion's
// code or its alternatives, the Medicare reminder, the demographic warning,
// and any advisor narrative.
func (c Config) recommendations(suggestions []Suggestion, in SynthesisInput) []string {
	var recs []string

	if len(suggestions) == 0 {
		recs = append(recs,
			"No code suggestions matched the documentation - broaden the clinical review and re-run the analysis")
	} else {
		top := suggestions[0]
		if top.CategoryEligible {
			recs = append(recs, fmt.Sprintf("RECOMMENDED ICD-10: %s (%s) - Revenue: +$%s/year",
				top.Code, top.Category, formatDollars(top.RevenueEstimate)))
		} else {
			recs = append(recs, fmt.Sprintf("CURRENT SELECTION: %s (No HCC) - Consider HCC-eligible alternatives", top.Code))
			if len(top.Alternatives) > 0 {
				recs = append(recs, "BETTER OPTIONS: "+strings.Join(top.Alternatives, ", "))
			}
		}
	}

	if in.Profile.Age != nil && *in.Profile.Age >= c.MedicareAge {
		recs = append(recs, "MEDICARE PATIENT: Ensure annual HCC recapture for continued risk adjustment")
	}

	if in.Multiplier > c.HighRiskWarningCut {
		recs = append(recs, fmt.Sprintf(
			"HIGH DEMOGRAPHIC RISK: Age/gender profile increases clinical significance (factor: %.2f)", in.Multiplier))
	}

	if in.Hint != nil && in.Hint.Assessment != "" {
		recs = append(recs, "ADVISOR: "+in.Hint.Assessment)
	}

	return recs
}

func (c Config) actionItems(profile Profile) []string {
	items := []string{
		"Review suggested ICD-10 codes for HCC eligibility before final selection",
		"Compare revenue impact of different ICD-10 code options",
		"Verify clinical documentation supports the most specific ICD-10 code available",
		"Review clinical documentation for MEAT criteria (Monitor, Evaluate, Assess, Treat)",
		"Consider demographic risk factors when selecting between similar ICD-10 codes",
	}
	if profile.Age != nil && *profile.Age >= c.MedicareAge {
		items = append(items,
			"Prioritize HCC-eligible codes for Medicare risk adjustment",
			"Ensure comprehensive geriatric assessment for Medicare risk adjustment",
		)
	}
	return items
}

func (c Config) documentationTips(profile Profile) []string {
	tips := []string{
		"Document SPECIFIC complications: instead of 'diabetes', use 'diabetes with kidney disease'",
		"Include SEVERITY levels: stage of kidney disease, ejection fraction for heart failure",
		"Note CHRONIC vs ACUTE: chronic conditions often have higher HCC values",
		"Capture COMORBIDITIES: multiple conditions can increase overall RAF score",
	}
	if profile.Age != nil && *profile.Age >= c.MedicareAge {
		tips = append(tips, "MEDICARE FOCUS: ensure annual recapture of all chronic conditions for this Medicare patient")
	}
	return tips
}

// additionalDocumentation prefers the advisor's documentation suggestions and
// falls back to the generic tips when none were produced.
func additionalDocumentation(hint *Hint) []string {
	if hint != nil && len(hint.DocumentationNotes) > 0 {
		return append([]string(nil), hint.DocumentationNotes...)
	}
	return []string{
		"Document specific complications and comorbidities",
		"Include severity indicators and staging",
		"Note chronic vs acute presentation",
	}
}

// ─── DERIVATION TABLES ───────────────────────────────────────────────────────

// useCaseRule keys an advisory string on description substrings. Rules are
// checked in declaration order; the first whose terms all match wins.
type useCaseRule struct {
	all  []string // every substring must be present
	hint string
}

var useCaseRules = []useCaseRule{
	{[]string{"diabetes", "kidney"}, "Use when patient has diabetes WITH kidney involvement/nephropathy"},
	{[]string{"diabetes", "neuropathy"}, "Use when patient has diabetes WITH nerve damage/neuropathy"},
	{[]string{"diabetes", "without complications"}, "WARNING: AVOID - use more specific codes if complications exist"},
	{[]string{"diabetes"}, "Use for diabetes with documented complications"},
	{[]string{"heart", "failure"}, "Use when patient has documented heart failure (higher RAF value)"},
	{[]string{"heart"}, "Use for coronary artery disease without heart failure"},
	{[]string{"kidney", "stage"}, "Use when CKD stage is documented (higher stages = higher RAF)"},
	{[]string{"kidney"}, "Use for general kidney disorders"},
}

func useCaseHint(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range useCaseRules {
		matched := true
		for _, term := range rule.all {
			if !strings.Contains(desc, term) {
				matched = false
				break
			}
		}
		if matched {
			return rule.hint
		}
	}
	return ""
}

// supportingText finds the first sentence of the full text containing one of
// the first three words of the candidate description.
func supportingText(description, fullText string) string {
	words := strings.Fields(strings.ToLower(description))
	if len(words) > 3 {
		words = words[:3]
	}
	sentences := strings.Split(fullText, ".")

	for _, w := range words {
		if !strings.Contains(strings.ToLower(fullText), w) {
			continue
		}
		for _, sentence := range sentences {
			if strings.Contains(strings.ToLower(sentence), w) {
				if trimmed := strings.TrimSpace(sentence); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return "Clinical documentation supports this condition"
}

// ─── FORMAT HELPERS ──────────────────────────────────────────────────────────

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// formatDollars groups thousands with commas: 11475 → "11,475".
func formatDollars(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
