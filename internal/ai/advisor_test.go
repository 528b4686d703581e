package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/siddhantborse/Alphaaudit-pro/internal/ai"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// ─── STUBS ────────────────────────────────────────────────────────────────────

type stubAdvisor struct {
	hint  scoring.Hint
	err   error
	calls int
}

func (s *stubAdvisor) Analyze(_ context.Context, _ ai.Request) (scoring.Hint, error) {
	s.calls++
	return s.hint, s.err
}

// discardLogger returns a *slog.Logger that silently drops all log output.
// Use this instead of nil — fallback.go calls f.logger.Warn() which panics on nil.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest() ai.Request {
	age := 67
	return ai.Request{
		Age:              &age,
		Gender:           "male",
		PrimaryDiagnosis: "diabetes",
		ClinicalNotes:    "chronic kidney disease stage 3",
	}
}

// ─── FallbackAdvisor ──────────────────────────────────────────────────────────

func TestFallbackAdvisor_PrimarySucceeds_SecondaryNotCalled(t *testing.T) {
	primary := &stubAdvisor{
		hint: scoring.Hint{
			CategoryOpportunities: []scoring.CategoryOpportunity{
				{Category: "HCC 18", Confidence: 0.85, RiskNote: "primary reasoning"},
			},
		},
	}
	secondary := &stubAdvisor{}

	advisor := ai.NewFallbackAdvisor(primary, secondary, discardLogger())

	hint, err := advisor.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(hint.CategoryOpportunities) != 1 || hint.CategoryOpportunities[0].RiskNote != "primary reasoning" {
		t.Errorf("expected primary hint, got: %+v", hint)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called, got %d calls", secondary.calls)
	}
	if primary.calls != 1 {
		t.Errorf("primary should be called once, got %d calls", primary.calls)
	}
}

func TestFallbackAdvisor_PrimaryFails_SecondaryUsed(t *testing.T) {
	primary := &stubAdvisor{err: errors.New("ollama timeout")}
	secondary := &stubAdvisor{
		hint: scoring.Hint{Assessment: "secondary assessment"},
	}

	advisor := ai.NewFallbackAdvisor(primary, secondary, discardLogger())

	hint, err := advisor.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint.Assessment != "secondary assessment" {
		t.Errorf("expected secondary hint, got: %+v", hint)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, secondary.calls)
	}
}

func TestFallbackAdvisor_BothFail_ReturnsError(t *testing.T) {
	primary := &stubAdvisor{err: errors.New("primary error")}
	secondary := &stubAdvisor{err: errors.New("secondary error")}

	advisor := ai.NewFallbackAdvisor(primary, secondary, discardLogger())

	if _, err := advisor.Analyze(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error when both advisors fail")
	}
}

func TestFallbackAdvisor_NilPrimary_UsesSecondaryDirectly(t *testing.T) {
	secondary := &stubAdvisor{
		hint: scoring.Hint{Assessment: "only secondary"},
	}

	advisor := ai.NewFallbackAdvisor(nil, secondary, discardLogger())

	hint, err := advisor.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint.Assessment != "only secondary" {
		t.Errorf("expected secondary hint, got: %+v", hint)
	}
	if secondary.calls != 1 {
		t.Errorf("expected 1 secondary call, got %d", secondary.calls)
	}
}

func TestFallbackAdvisor_NilSecondary_PrimaryErrorBubbles(t *testing.T) {
	primaryErr := errors.New("primary blew up")
	primary := &stubAdvisor{err: primaryErr}

	advisor := ai.NewFallbackAdvisor(primary, nil, discardLogger())

	_, err := advisor.Analyze(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, primaryErr) {
		t.Errorf("expected to find primaryErr in chain, got: %v", err)
	}
}

// ─── NoopAdvisor ──────────────────────────────────────────────────────────────

func TestNoopAdvisor_AlwaysUnavailable(t *testing.T) {
	_, err := ai.NoopAdvisor{}.Analyze(context.Background(), testRequest())
	if !errors.Is(err, ai.ErrAdvisorUnavailable) {
		t.Errorf("err = %v, want ErrAdvisorUnavailable", err)
	}
}

// ─── OllamaClient ─────────────────────────────────────────────────────────────

const ollamaAnalysisBody = `{
	"primary_conditions": ["diabetes", "chronic kidney disease"],
	"hcc_opportunities": [
		{"condition": "diabetic CKD", "hcc_category": "HCC 18", "confidence": 0.85, "demographic_risk": 1.2, "reasoning": "documented nephropathy"},
		{"condition": "", "hcc_category": "", "confidence": 0.5, "demographic_risk": 1.0, "reasoning": "dropped"}
	],
	"risk_factors": {"age_impact": "High", "gender_considerations": "male - age 67", "comorbidity_risk": "high comorbidity burden"},
	"documentation_recommendations": ["document CKD stage explicitly"],
	"overall_assessment": "strong capture opportunity"
}`

func newOllamaServer(t *testing.T, generateStatus int, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/generate":
			var req struct {
				Model  string `json:"model"`
				Prompt string `json:"prompt"`
				Format string `json:"format"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode generate request: %v", err)
			}
			if req.Format != "json" {
				t.Errorf("format = %q, want json", req.Format)
			}
			if !strings.Contains(req.Prompt, "PRIMARY DIAGNOSIS: diabetes") {
				t.Error("prompt missing primary diagnosis")
			}
			w.WriteHeader(generateStatus)
			json.NewEncoder(w).Encode(map[string]string{"response": response})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOllamaClient_ParsesAnalysis(t *testing.T) {
	srv := newOllamaServer(t, http.StatusOK, ollamaAnalysisBody)
	defer srv.Close()

	client := ai.NewOllamaClient(srv.URL, "phi3")
	hint, err := client.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(hint.CategoryOpportunities) != 1 {
		t.Fatalf("got %d opportunities, want 1 (empty category dropped)", len(hint.CategoryOpportunities))
	}
	opp := hint.CategoryOpportunities[0]
	if opp.Category != "HCC 18" || opp.Confidence != 0.85 || opp.RiskNote != "documented nephropathy" {
		t.Errorf("opportunity = %+v", opp)
	}
	if hint.RiskAssessment.AgeImpact != "high" {
		t.Errorf("AgeImpact = %q, want normalized %q", hint.RiskAssessment.AgeImpact, "high")
	}
	if len(hint.DocumentationNotes) != 1 || hint.DocumentationNotes[0] != "document CKD stage explicitly" {
		t.Errorf("DocumentationNotes = %v, want the documentation recommendation", hint.DocumentationNotes)
	}
	if hint.Assessment != "strong capture opportunity" {
		t.Errorf("Assessment = %q, want the overall assessment", hint.Assessment)
	}
}

func TestOllamaClient_StripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + ollamaAnalysisBody + "\n```"
	srv := newOllamaServer(t, http.StatusOK, fenced)
	defer srv.Close()

	client := ai.NewOllamaClient(srv.URL, "phi3")
	hint, err := client.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(hint.CategoryOpportunities) != 1 {
		t.Errorf("got %d opportunities, want 1", len(hint.CategoryOpportunities))
	}
}

func TestOllamaClient_MalformedJSONIsError(t *testing.T) {
	srv := newOllamaServer(t, http.StatusOK, "not json at all")
	defer srv.Close()

	client := ai.NewOllamaClient(srv.URL, "phi3")
	if _, err := client.Analyze(context.Background(), testRequest()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOllamaClient_ServerDownIsUnavailable(t *testing.T) {
	srv := newOllamaServer(t, http.StatusOK, ollamaAnalysisBody)
	srv.Close() // probe must fail

	client := ai.NewOllamaClient(srv.URL, "phi3")
	_, err := client.Analyze(context.Background(), testRequest())
	if !errors.Is(err, ai.ErrAdvisorUnavailable) {
		t.Errorf("err = %v, want ErrAdvisorUnavailable", err)
	}
}

func TestOllamaClient_ConfidenceClamped(t *testing.T) {
	body := `{"hcc_opportunities": [{"hcc_category": "HCC 85", "confidence": 1.7, "reasoning": "overconfident"}]}`
	srv := newOllamaServer(t, http.StatusOK, body)
	defer srv.Close()

	client := ai.NewOllamaClient(srv.URL, "phi3")
	hint, err := client.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := hint.CategoryOpportunities[0].Confidence; got != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1.0", got)
	}
}
