package scoring_test

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/siddhantborse/Alphaaudit-pro/internal/extract"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

func scoredFixture() []scoring.Scored {
	return []scoring.Scored{
		{
			Candidate:           scoring.Candidate{Code: "E11.9", Description: "Type 2 diabetes mellitus without complications", Category: scoring.NoCategory, BaselineRAF: 0},
			Confidence:          70,
			AdjustedRAF:         0,
			Priority:            scoring.PriorityLow,
			PriorityExplanation: "Review: lower RAF (0.000), verify coding accuracy",
		},
		{
			Candidate:           scoring.Candidate{Code: "E11.22", Description: "Type 2 diabetes mellitus with diabetic chronic kidney disease", Category: "HCC 18", BaselineRAF: 0.302},
			Confidence:          82,
			AdjustedRAF:         0.5889,
			Priority:            scoring.PriorityMedium,
			PriorityExplanation: "Important: moderate RAF (0.302), demographic risk factor 1.95",
		},
		{
			Candidate:           scoring.Candidate{Code: "N18.5", Description: "Chronic kidney disease, stage 5 (severe)", Category: "HCC 136", BaselineRAF: 0.675},
			Confidence:          75,
			AdjustedRAF:         1.31625,
			Priority:            scoring.PriorityHigh,
			PriorityExplanation: "Critical: high RAF (0.675), age 67, significant clinical factors",
		},
	}
}

func synthesisFixture() scoring.SynthesisInput {
	return scoring.SynthesisInput{
		Scored:     scoredFixture(),
		Signals:    extract.Extract("diabetes", "chronic kidney disease stage 5, severe", ""),
		Profile:    scoring.Profile{Age: intPtr(67), Gender: "male"},
		Multiplier: 1.95,
		FullText:   "diabetes chronic kidney disease stage 5, severe. Patient on dialysis schedule.",
	}
}

// ─── Ordering and truncation ──────────────────────────────────────────────────

func TestSynthesize_OrdersByPriorityThenConfidence(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	wantOrder := []string{"N18.5", "E11.22", "E11.9"}
	if len(got.Suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got.Suggestions))
	}
	for i, want := range wantOrder {
		if got.Suggestions[i].Code != want {
			t.Errorf("position %d: code = %s, want %s", i, got.Suggestions[i].Code, want)
		}
	}
}

func TestSynthesize_TruncatesToMaxSuggestions(t *testing.T) {
	cfg := scoring.DefaultConfig()
	in := synthesisFixture()
	for i := range 15 {
		in.Scored = append(in.Scored, scoring.Scored{
			Candidate:  scoring.Candidate{Code: fmt.Sprintf("Z%02d.0", i), Description: "filler", Category: scoring.NoCategory},
			Confidence: 45,
			Priority:   scoring.PriorityLow,
		})
	}
	got := cfg.Synthesize(in)
	if len(got.Suggestions) != cfg.MaxSuggestions {
		t.Errorf("got %d suggestions, want %d", len(got.Suggestions), cfg.MaxSuggestions)
	}
}

// Equal scores rank by code so repeated runs emit identical JSON.
func TestSynthesize_DeterministicOutput(t *testing.T) {
	cfg := scoring.DefaultConfig()
	first, err := json.Marshal(cfg.Synthesize(synthesisFixture()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for range 10 {
		next, _ := json.Marshal(cfg.Synthesize(synthesisFixture()))
		if string(next) != string(first) {
			t.Fatal("repeated synthesis produced different JSON")
		}
	}
}

// ─── Revenue and eligibility invariants ───────────────────────────────────────

func TestSynthesize_RevenueConsistency(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	for _, s := range got.Suggestions {
		if s.CategoryEligible {
			want := int(math.Round(s.AdjustedRAF * cfg.RevenuePerRAFPoint))
			// AdjustedRAF in the suggestion is rounded to 3 decimals; allow
			// the corresponding rounding slack.
			diff := s.RevenueEstimate - want
			if diff < -9 || diff > 9 {
				t.Errorf("%s: revenue %d, want ≈%d", s.Code, s.RevenueEstimate, want)
			}
			if s.AdjustedRAF <= 0 {
				t.Errorf("%s: eligible with non-positive adjusted RAF %v", s.Code, s.AdjustedRAF)
			}
		} else if s.RevenueEstimate != 0 {
			t.Errorf("%s: ineligible but revenue %d", s.Code, s.RevenueEstimate)
		}
	}
}

func TestSynthesize_AlternativesOnlyForIneligible(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	for _, s := range got.Suggestions {
		if s.CategoryEligible && len(s.Alternatives) > 0 {
			t.Errorf("%s: eligible suggestion carries alternatives %v", s.Code, s.Alternatives)
		}
		if len(s.Alternatives) > 2 {
			t.Errorf("%s: %d alternatives, want ≤2", s.Code, len(s.Alternatives))
		}
	}

	// E11.9 shares "diabetes" with E11.22, which is eligible.
	var e119 scoring.Suggestion
	for _, s := range got.Suggestions {
		if s.Code == "E11.9" {
			e119 = s
		}
	}
	if len(e119.Alternatives) == 0 {
		t.Fatal("E11.9 should list the eligible diabetes alternative")
	}
	if !strings.Contains(e119.Alternatives[0], "E11.22") || !strings.Contains(e119.Alternatives[0], "HCC 18") {
		t.Errorf("alternative %q missing code or category", e119.Alternatives[0])
	}
	if !strings.Contains(e119.Alternatives[0], "$5,134") {
		t.Errorf("alternative %q missing baseline dollar estimate", e119.Alternatives[0])
	}
}

// ─── Use-case hints ───────────────────────────────────────────────────────────

func TestSynthesize_UseCaseHints(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	byCode := map[string]scoring.Suggestion{}
	for _, s := range got.Suggestions {
		byCode[s.Code] = s
	}

	if hint := byCode["E11.22"].UseCaseHint; !strings.Contains(hint, "kidney involvement") {
		t.Errorf("E11.22 hint = %q", hint)
	}
	if hint := byCode["E11.9"].UseCaseHint; !strings.Contains(hint, "AVOID") {
		t.Errorf("E11.9 hint = %q, want the avoid warning", hint)
	}
	if hint := byCode["N18.5"].UseCaseHint; !strings.Contains(hint, "CKD stage") {
		t.Errorf("N18.5 hint = %q", hint)
	}
}

// ─── Aggregates ───────────────────────────────────────────────────────────────

func TestSynthesize_Comparison(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	if got.Comparison.EligibleCount != 2 || got.Comparison.IneligibleCount != 1 {
		t.Errorf("comparison counts = %d/%d, want 2/1",
			got.Comparison.EligibleCount, got.Comparison.IneligibleCount)
	}
	if got.Comparison.PotentialMissedRevenue <= 0 {
		t.Error("potential missed revenue should be positive")
	}
	if got.Comparison.EligibleMeanRAF <= 0 {
		t.Error("eligible mean RAF should be positive")
	}
	if len(got.Comparison.TopRevenueCodes) == 0 {
		t.Error("top revenue codes should not be empty")
	}
	// Highest-revenue code first.
	if !strings.Contains(got.Comparison.TopRevenueCodes[0], "N18.5") {
		t.Errorf("top revenue code = %q, want N18.5 first", got.Comparison.TopRevenueCodes[0])
	}
}

func TestSynthesize_TotalRAFIsTopThree(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	want := math.Round((1.31625+0.5889+0)*1000) / 1000
	if got.TotalRAF != want {
		t.Errorf("TotalRAF = %v, want %v", got.TotalRAF, want)
	}
	if !strings.HasPrefix(got.PotentialRevenue, "$") {
		t.Errorf("PotentialRevenue = %q, want dollar string", got.PotentialRevenue)
	}
}

func TestSynthesize_OverallLabels(t *testing.T) {
	cfg := scoring.DefaultConfig()

	// Mean of 70/82/75 = 75.67 → MEDIUM; one HIGH suggestion → HIGH priority.
	got := cfg.Synthesize(synthesisFixture())
	if got.OverallConfidence != "MEDIUM" {
		t.Errorf("OverallConfidence = %q, want MEDIUM", got.OverallConfidence)
	}
	if got.OverallPriority != scoring.PriorityHigh {
		t.Errorf("OverallPriority = %q, want HIGH", got.OverallPriority)
	}
}

func TestSynthesize_EmptyCandidateSet(t *testing.T) {
	cfg := scoring.DefaultConfig()
	in := synthesisFixture()
	in.Scored = nil

	got := cfg.Synthesize(in)
	if len(got.Suggestions) != 0 {
		t.Fatalf("got %d suggestions, want 0", len(got.Suggestions))
	}
	if got.OverallConfidence != "LOW" || got.OverallPriority != scoring.PriorityLow {
		t.Errorf("labels = %s/%s, want LOW/LOW", got.OverallConfidence, got.OverallPriority)
	}
	found := false
	for _, rec := range got.Recommendations {
		if strings.Contains(rec, "broaden") {
			found = true
		}
	}
	if !found {
		t.Errorf("recommendations %v missing broader-review advice", got.Recommendations)
	}
}

// ─── Recommendations and demographics ─────────────────────────────────────────

func TestSynthesize_Recommendations(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	joined := strings.Join(got.Recommendations, " | ")
	if !strings.Contains(joined, "RECOMMENDED ICD-10: N18.5") {
		t.Errorf("recommendations missing top eligible code: %s", joined)
	}
	if !strings.Contains(joined, "MEDICARE PATIENT") {
		t.Errorf("recommendations missing Medicare reminder for age 67: %s", joined)
	}
	if !strings.Contains(joined, "HIGH DEMOGRAPHIC RISK") {
		t.Errorf("recommendations missing multiplier warning for 1.95: %s", joined)
	}
}

func TestSynthesize_AdvisorNarrativeAppended(t *testing.T) {
	cfg := scoring.DefaultConfig()
	in := synthesisFixture()
	in.Hint = &scoring.Hint{
		DocumentationNotes: []string{"document dialysis dependence explicitly"},
		Assessment:         "high-value renal capture opportunity",
	}
	in.AdvisorAvailable = true

	got := cfg.Synthesize(in)
	if !got.AdvisorAvailable {
		t.Error("AdvisorAvailable not carried through")
	}
	joined := strings.Join(got.Recommendations, " | ")
	if !strings.Contains(joined, "ADVISOR: high-value renal capture opportunity") {
		t.Errorf("advisor assessment missing from recommendations: %s", joined)
	}
	if len(got.AdditionalDocumentation) != 1 ||
		got.AdditionalDocumentation[0] != "document dialysis dependence explicitly" {
		t.Errorf("AdditionalDocumentation = %v, want the advisor's note", got.AdditionalDocumentation)
	}
}

func TestSynthesize_AdditionalDocumentationFallsBackWithoutHint(t *testing.T) {
	cfg := scoring.DefaultConfig()

	got := cfg.Synthesize(synthesisFixture())
	if len(got.AdditionalDocumentation) != 3 {
		t.Fatalf("AdditionalDocumentation = %v, want the three generic tips", got.AdditionalDocumentation)
	}
	if got.AdditionalDocumentation[0] != "Document specific complications and comorbidities" {
		t.Errorf("first tip = %q", got.AdditionalDocumentation[0])
	}
}

func TestSynthesize_DemographicSummary(t *testing.T) {
	cfg := scoring.DefaultConfig()

	got := cfg.Synthesize(synthesisFixture())
	if got.Demographics == nil {
		t.Fatal("demographic summary missing for complete profile")
	}
	want := &scoring.DemographicSummary{
		AgeGroup:             "Senior (65+)",
		RiskMultiplier:       1.95,
		AgeImpact:            "Moderate",
		GenderConsiderations: "male - age 67",
	}
	if !reflect.DeepEqual(got.Demographics, want) {
		t.Errorf("demographics = %+v, want %+v", got.Demographics, want)
	}

	in := synthesisFixture()
	in.Profile = scoring.Profile{}
	in.Multiplier = 1.0
	if got := cfg.Synthesize(in); got.Demographics != nil {
		t.Errorf("demographic summary %+v present for incomplete profile", got.Demographics)
	}
}

func TestSynthesize_ReasoningMentionsTier(t *testing.T) {
	cfg := scoring.DefaultConfig()
	got := cfg.Synthesize(synthesisFixture())

	for _, s := range got.Suggestions {
		switch {
		case s.Confidence > 80:
			if !strings.Contains(s.Reasoning, "Strong clinical correlation") {
				t.Errorf("%s: reasoning %q missing strong-correlation sentence", s.Code, s.Reasoning)
			}
		case s.Confidence > 60:
			if !strings.Contains(s.Reasoning, "Good match") {
				t.Errorf("%s: reasoning %q missing good-match sentence", s.Code, s.Reasoning)
			}
		default:
			if !strings.Contains(s.Reasoning, "requires clinical review") {
				t.Errorf("%s: reasoning %q missing review sentence", s.Code, s.Reasoning)
			}
		}
		if !strings.HasSuffix(s.Reasoning, ".") {
			t.Errorf("%s: reasoning %q should end with the priority explanation", s.Code, s.Reasoning)
		}
	}
}
