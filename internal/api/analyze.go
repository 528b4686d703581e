package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/siddhantborse/Alphaaudit-pro/internal/analytics"
	"github.com/siddhantborse/Alphaaudit-pro/internal/engine"
	"github.com/siddhantborse/Alphaaudit-pro/internal/scoring"
)

// analyzeRequest is the POST /api/analyze body. Only the diagnosis and the
// clinical notes are required; the demographic and medication fields sharpen
// the risk multiplier and the advisory pass when present.
type analyzeRequest struct {
	PrimaryDiagnosis string `json:"primary_diagnosis"`
	ClinicalNotes    string `json:"clinical_notes"`
	VisitType        string `json:"visit_type"`
	ProviderName     string `json:"provider_name"`
	PatientAge       *int   `json:"patient_age"`
	PatientGender    string `json:"patient_gender"`
	MedicalHistory   string `json:"medical_history"`
	Medications      string `json:"medications"`
	LabValues        string `json:"lab_values"`
}

// handleAnalyze runs one analysis and records the outcome off the request
// path. POST /api/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.PrimaryDiagnosis) == "" {
		respondErr(w, http.StatusBadRequest, "primary_diagnosis is required")
		return
	}
	if strings.TrimSpace(req.ClinicalNotes) == "" {
		respondErr(w, http.StatusBadRequest, "clinical_notes is required")
		return
	}

	result, err := s.engine.Analyze(r.Context(), engine.Request{
		PrimaryDiagnosis: req.PrimaryDiagnosis,
		ClinicalNotes:    req.ClinicalNotes,
		MedicalHistory:   req.MedicalHistory,
		Age:              req.PatientAge,
		Gender:           req.PatientGender,
		VisitType:        req.VisitType,
		Medications:      req.Medications,
		LabValues:        req.LabValues,
	})
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	s.record(req, result)

	s.logger.Info("analysis complete",
		"suggestions", len(result.Suggestions),
		"priority", result.OverallPriority,
		"advisor", result.AdvisorAvailable,
		logField(r),
	)

	respond(w, http.StatusOK, result)
}

// record hands the completed analysis to the analytics sink. Recording never
// affects the HTTP response.
func (s *Server) record(req analyzeRequest, result scoring.Result) {
	topCode, topCategory := "", ""
	if len(result.Suggestions) > 0 {
		topCode = result.Suggestions[0].Code
		topCategory = result.Suggestions[0].Category
	}

	snapshot, err := json.Marshal(result.Suggestions)
	if err != nil {
		snapshot = nil
	}

	s.sink.Record(analytics.Entry{
		Physician:       req.ProviderName,
		VisitType:       req.VisitType,
		Diagnosis:       req.PrimaryDiagnosis,
		SuggestionCount: len(result.Suggestions),
		TopCode:         topCode,
		TopCategory:     topCategory,
		TotalRAF:        result.TotalRAF,
		AdvisorUsed:     result.AdvisorAvailable,
		OverallPriority: string(result.OverallPriority),
		Suggestions:     snapshot,
	})
}
