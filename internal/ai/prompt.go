package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// ─── PROMPT ──────────────────────────────────────────────────────────────────

// analysisInstructions is shared by both backends. The model is prompted to
// respond in the exact JSON shape of analysisJSON so we can parse it without
// regex heuristics.
const analysisInstructions = `You are an expert HCC (Hierarchical Condition Category) coding specialist and clinical analyst.

Based on the clinical picture above, provide a detailed analysis focusing on:

1. RISK STRATIFICATION: How do the patient's age and gender affect HCC risk?
2. CONDITION SEVERITY: Assess the severity and specificity of documented conditions
3. HCC OPPORTUNITIES: Identify potential HCC categories with high confidence
4. DOCUMENTATION GAPS: What additional documentation would strengthen HCC capture?
5. DEMOGRAPHIC IMPACT: How do demographics change the risk profile?

Respond ONLY with valid JSON matching this exact schema, no markdown fences, no preamble:
{
  "primary_conditions": ["list of main conditions identified"],
  "hcc_opportunities": [
    {
      "condition": "condition name",
      "hcc_category": "HCC XX",
      "confidence": 0.85,
      "demographic_risk": 1.2,
      "reasoning": "detailed clinical reasoning"
    }
  ],
  "risk_factors": {
    "age_impact": "high/medium/low",
    "gender_considerations": "relevant factors",
    "comorbidity_risk": "assessment"
  },
  "documentation_recommendations": ["specific suggestions"],
  "overall_assessment": "comprehensive summary"
}`

// buildPrompt serialises the request into a compact prompt string.
func buildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("PATIENT PROFILE:\n")
	if req.Age != nil {
		fmt.Fprintf(&sb, "- Age: %d\n", *req.Age)
	} else {
		sb.WriteString("- Age: Unknown\n")
	}
	fmt.Fprintf(&sb, "- Gender: %s\n", orUnknown(req.Gender))
	fmt.Fprintf(&sb, "- Visit Type: %s\n\n", orUnknown(req.VisitType))

	fmt.Fprintf(&sb, "PRIMARY DIAGNOSIS: %s\n\n", req.PrimaryDiagnosis)
	fmt.Fprintf(&sb, "CLINICAL DOCUMENTATION:\n%s\n\n", req.ClinicalNotes)
	fmt.Fprintf(&sb, "MEDICAL HISTORY: %s\n\n", orNone(req.MedicalHistory))
	fmt.Fprintf(&sb, "MEDICATIONS: %s\n\n", orNone(req.Medications))
	fmt.Fprintf(&sb, "LAB VALUES: %s\n\n", orNone(req.LabValues))

	sb.WriteString(analysisInstructions)
	return sb.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None provided"
	}
	return s
}

// ─── RESPONSE PARSING ────────────────────────────────────────────────────────

// analysisJSON mirrors the schema the prompt asks for.
type analysisJSON struct {
	PrimaryConditions []string `json:"primary_conditions"`
	HCCOpportunities  []struct {
		Condition       string  `json:"condition"`
		HCCCategory     string  `json:"hcc_category"`
		Confidence      float64 `json:"confidence"`
		DemographicRisk float64 `json:"demographic_risk"`
		Reasoning       string  `json:"reasoning"`
	} `json:"hcc_opportunities"`
	RiskFactors struct {
		AgeImpact            string `json:"age_impact"`
		GenderConsiderations string `json:"gender_considerations"`
		ComorbidityRisk      string `json:"comorbidity_risk"`
	} `json:"risk_factors"`
	DocumentationRecommendations []string `json:"documentation_recommendations"`
	OverallAssessment            string   `json:"overall_assessment"`
}

// parseHint decodes a raw model response into a scoring hint. Markdown
// fences are stripped first because smaller models add them despite the
// prompt.
func parseHint(raw string) (scoring.Hint, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var parsed analysisJSON
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return scoring.Hint{}, fmt.Errorf("ai: parse response JSON: %w (raw: %.200s)", err, raw)
	}

	hint := scoring.Hint{
		RiskAssessment: scoring.RiskAssessment{
			AgeImpact:       strings.ToLower(strings.TrimSpace(parsed.RiskFactors.AgeImpact)),
			ComorbidityRisk: parsed.RiskFactors.ComorbidityRisk,
		},
	}

	for _, opp := range parsed.HCCOpportunities {
		if strings.TrimSpace(opp.HCCCategory) == "" {
			continue
		}
		hint.CategoryOpportunities = append(hint.CategoryOpportunities, scoring.CategoryOpportunity{
			Category:   opp.HCCCategory,
			Confidence: math.Min(1, math.Max(0, opp.Confidence)),
			RiskNote:   opp.Reasoning,
		})
	}

	for _, rec := range parsed.DocumentationRecommendations {
		if strings.TrimSpace(rec) != "" {
			hint.DocumentationNotes = append(hint.DocumentationNotes, rec)
		}
	}
	hint.Assessment = strings.TrimSpace(parsed.OverallAssessment)

	return hint, nil
}
