package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/siddhantborse/Alphaaudit-pro/internal/ai"
	"github.com/siddhantborse/Alphaaudit-pro/internal/catalog"
	"github.com/siddhantborse/Alphaaudit-pro/internal/engine"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// ─── TEST INFRASTRUCTURE ──────────────────────────────────────────────────────

type stubAdvisor struct {
	hint  scoring.Hint
	err   error
	calls int
}

func (s *stubAdvisor) Analyze(_ context.Context, _ ai.Request) (scoring.Hint, error) {
	s.calls++
	return s.hint, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, advisor ai.Advisor) *engine.Engine {
	t.Helper()
	searcher, err := catalog.NewSearcher(catalog.NewMemoryStore(catalog.SeedMappings()), 64)
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}
	return engine.New(scoring.DefaultConfig(), searcher, advisor, time.Second, discardLogger())
}

func intPtr(v int) *int { return &v }

// ─── SCENARIOS ────────────────────────────────────────────────────────────────

func TestAnalyze_DiabetesWithKidneyDisease(t *testing.T) {
	e := newEngine(t, ai.NoopAdvisor{})

	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "diabetes",
		ClinicalNotes:    "Type 2 diabetes with chronic kidney disease stage 3, on metformin",
		Age:              intPtr(67),
		Gender:           "male",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Suggestions) == 0 {
		t.Fatal("no suggestions for a well-documented diabetes case")
	}
	top := result.Suggestions[0]
	if !top.CategoryEligible {
		t.Errorf("top suggestion %s should be HCC-eligible", top.Code)
	}
	if top.Priority != scoring.PriorityMedium && top.Priority != scoring.PriorityHigh {
		t.Errorf("top priority = %s, want MEDIUM or HIGH", top.Priority)
	}

	// 67-year-old male with diabetes and kidney keywords:
	// 1.0 + 0.4 + 0.1 + 0.2 + 0.25 = 1.95.
	if result.Demographics == nil {
		t.Fatal("demographic analysis missing")
	}
	if result.Demographics.RiskMultiplier != 1.95 {
		t.Errorf("multiplier = %v, want 1.95", result.Demographics.RiskMultiplier)
	}

	if result.AdvisorAvailable {
		t.Error("AdvisorAvailable should be false with the noop advisor")
	}
	if result.TotalRAF <= 0 {
		t.Errorf("TotalRAF = %v, want positive", result.TotalRAF)
	}
}

func TestAnalyze_HeartFailureScenario(t *testing.T) {
	e := newEngine(t, ai.NoopAdvisor{})

	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "heart failure",
		ClinicalNotes:    "Chronic systolic heart failure, severe, reduced ejection fraction 25%",
		Age:              intPtr(78),
		Gender:           "female",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Suggestions) == 0 {
		t.Fatal("no suggestions")
	}
	// Heart failure codes (HCC 85, RAF 0.323) must outrank the plain
	// ischemic codes.
	if !strings.Contains(result.Suggestions[0].Description, "failure") {
		t.Errorf("top suggestion %s (%s) is not a heart failure code",
			result.Suggestions[0].Code, result.Suggestions[0].Description)
	}
	// RAF 0.323 plus Medicare age, multiplier, and urgency markers lands at
	// 70 priority points: MEDIUM, one tier short of HIGH.
	if result.OverallPriority != scoring.PriorityMedium {
		t.Errorf("OverallPriority = %s, want MEDIUM", result.OverallPriority)
	}
}

func TestAnalyze_UnmatchedTextYieldsEmptyResult(t *testing.T) {
	e := newEngine(t, ai.NoopAdvisor{})

	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "sprained ankle",
		ClinicalNotes:    "twisted ankle playing basketball, swelling and bruising",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(result.Suggestions) != 0 {
		t.Errorf("got %d suggestions for an unmapped condition, want 0", len(result.Suggestions))
	}
	joined := strings.Join(result.Recommendations, " ")
	if !strings.Contains(joined, "broaden") {
		t.Errorf("recommendations %v missing broader-review advice", result.Recommendations)
	}
	if result.Demographics != nil {
		t.Error("demographic analysis present without a profile")
	}
}

func TestAnalyze_DiagnosisWordReachesCatalog(t *testing.T) {
	e := newEngine(t, ai.NoopAdvisor{})

	// "hyperglycemia" is not an extractor synonym, but the raw diagnosis is
	// appended to the search keywords and matches E11.65 by description.
	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "hyperglycemia",
		ClinicalNotes:    "persistent elevated glucose readings",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	found := false
	for _, s := range result.Suggestions {
		if s.Code == "E11.65" {
			found = true
		}
	}
	if !found {
		t.Error("E11.65 not suggested for hyperglycemia diagnosis")
	}
}

// ─── ADVISOR INTEGRATION ──────────────────────────────────────────────────────

func TestAnalyze_AdvisorHintRaisesMatchedCategory(t *testing.T) {
	advisor := &stubAdvisor{
		hint: scoring.Hint{
			CategoryOpportunities: []scoring.CategoryOpportunity{
				{Category: "HCC 18", Confidence: 0.9, RiskNote: "nephropathy documented"},
			},
			DocumentationNotes: []string{"document CKD stage and eGFR"},
			Assessment:         "capture CKD staging",
		},
	}
	e := newEngine(t, advisor)

	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "diabetes",
		ClinicalNotes:    "diabetic kidney disease, stage 3",
		Age:              intPtr(70),
		Gender:           "female",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if advisor.calls != 1 {
		t.Fatalf("advisor called %d times, want 1", advisor.calls)
	}
	if !result.AdvisorAvailable {
		t.Error("AdvisorAvailable should be true")
	}

	sawBoost := false
	for _, s := range result.Suggestions {
		if s.Category == "HCC 18" && s.AdvisorConfidence == 0.9 {
			sawBoost = true
			if !strings.Contains(s.Reasoning, "nephropathy documented") {
				t.Errorf("%s: reasoning %q missing advisor note", s.Code, s.Reasoning)
			}
		}
	}
	if !sawBoost {
		t.Error("no HCC 18 suggestion carries the advisor confidence")
	}

	joined := strings.Join(result.Recommendations, " | ")
	if !strings.Contains(joined, "ADVISOR: capture CKD staging") {
		t.Errorf("recommendations missing advisor assessment: %s", joined)
	}
	if len(result.AdditionalDocumentation) != 1 ||
		result.AdditionalDocumentation[0] != "document CKD stage and eGFR" {
		t.Errorf("AdditionalDocumentation = %v, want the advisor's documentation note",
			result.AdditionalDocumentation)
	}
}

func TestAnalyze_AdvisorFailureDegradesSilently(t *testing.T) {
	advisor := &stubAdvisor{err: errors.New("model exploded")}
	e := newEngine(t, advisor)

	result, err := e.Analyze(context.Background(), engine.Request{
		PrimaryDiagnosis: "diabetes",
		ClinicalNotes:    "type 2 diabetes, well controlled",
	})
	if err != nil {
		t.Fatalf("advisor failure must not fail the analysis: %v", err)
	}
	if result.AdvisorAvailable {
		t.Error("AdvisorAvailable should be false after advisor failure")
	}
	if len(result.Suggestions) == 0 {
		t.Error("rule-based suggestions missing in degraded mode")
	}
}

// ─── DETERMINISM ──────────────────────────────────────────────────────────────

func TestAnalyze_Deterministic(t *testing.T) {
	e := newEngine(t, ai.NoopAdvisor{})
	req := engine.Request{
		PrimaryDiagnosis: "kidney disease",
		ClinicalNotes:    "chronic kidney disease stage 4, severe, on dialysis schedule",
		MedicalHistory:   "diabetes, hypertension",
		Age:              intPtr(72),
		Gender:           "male",
	}

	first, err := e.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for range 5 {
		next, err := e.Analyze(context.Background(), req)
		if err != nil {
			t.Fatalf("Analyze (repeat): %v", err)
		}
		nextJSON, _ := json.Marshal(next)
		if string(nextJSON) != string(firstJSON) {
			t.Fatal("repeated analysis produced different JSON")
		}
	}
}
