package api

import "net/http"

// demoScenario is one canned input for manual testing against a running
// instance.
type demoScenario struct {
	Name                string `json:"name"`
	PrimaryDiagnosis    string `json:"primary_diagnosis"`
	ClinicalNotes       string `json:"clinical_notes"`
	CurrentICD          string `json:"current_icd,omitempty"`
	ExpectedImprovement string `json:"expected_improvement"`
}

var demoScenarios = []demoScenario{
	{
		Name:                "Diabetic with Kidney Disease",
		PrimaryDiagnosis:    "diabetes",
		ClinicalNotes:       "Patient has type 2 diabetes with chronic kidney disease stage 3. Blood sugar levels elevated. Creatinine 1.8. Patient on metformin and ACE inhibitor.",
		CurrentICD:          "E11.9",
		ExpectedImprovement: "E11.22 (HCC 18, RAF 0.302)",
	},
	{
		Name:                "Heart Failure Patient",
		PrimaryDiagnosis:    "shortness of breath",
		ClinicalNotes:       "Patient presents with dyspnea, pedal edema, and fatigue. Echo shows reduced ejection fraction. History of coronary artery disease.",
		ExpectedImprovement: "I50.9 (HCC 85, RAF 0.323)",
	},
}

// handleDemoScenarios lists the canned patient scenarios.
// GET /api/demo-scenarios
func (s *Server) handleDemoScenarios(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, demoScenarios)
}
