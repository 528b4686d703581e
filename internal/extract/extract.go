// Package extract turns free-text clinical documentation into a normalized
// set of condition signals: matched keywords, a primary condition, chronicity
// and severity markers. It is intentionally dependency-free: it imports
// nothing from internal/ and can be tested without a database or network.
package extract

import (
	"strings"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Chronicity classifies whether the documented conditions read as ongoing or
// newly presenting.
type Chronicity string

const (
	ChronicityAcute   Chronicity = "acute"
	ChronicityChronic Chronicity = "chronic"
	ChronicityUnknown Chronicity = "unknown"
)

// Severity is the coarse severity read from documentation markers.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityUnknown  Severity = "unknown"
)

// PrimaryUnknown is the PrimaryCondition value when no privileged condition
// category matched the text.
const PrimaryUnknown = "unknown"

// Signals is the immutable output of Extract. Built once per analysis request
// and threaded through the scorer unchanged.
type Signals struct {
	// Keywords holds every synonym that matched the text, deduplicated,
	// in first-match order.
	Keywords []string

	// PrimaryCondition is the tag of the first privileged category whose
	// synonym matched, or PrimaryUnknown.
	PrimaryCondition string

	// SecondaryConditions is Keywords[1:3] when at least two keywords
	// matched, else empty.
	SecondaryConditions []string

	Chronicity Chronicity
	Severity   Severity
}

// ─── CONDITION CATEGORY TABLE ─────────────────────────────────────────────────

// conditionCategory maps a category tag to the substrings that signal it.
// The table is a slice, not a map: PrimaryCondition is defined as the first
// privileged category to match, so iteration order must be fixed.
type conditionCategory struct {
	tag        string
	synonyms   []string
	privileged bool // eligible to become PrimaryCondition
}

var conditionCategories = []conditionCategory{
	{tag: "heart", privileged: true,
		synonyms: []string{"heart", "cardiac", "coronary", "myocardial", "cardiovascular", "ischemic heart"}},
	{tag: "heart failure", privileged: true,
		synonyms: []string{"heart failure", "congestive heart failure", "chf"}},
	{tag: "myocardial",
		synonyms: []string{"myocardial", "heart attack", "mi", "coronary artery"}},
	{tag: "kidney", privileged: true,
		synonyms: []string{"kidney", "renal", "nephropathy", "chronic kidney disease", "ckd"}},
	{tag: "dialysis",
		synonyms: []string{"dialysis", "hemodialysis", "peritoneal dialysis"}},
	{tag: "diabetes", privileged: true,
		synonyms: []string{"diabetes", "diabetic", "dm", "blood sugar", "glucose", "hyperglycemia", "hba1c"}},
	{tag: "diabetic complications",
		synonyms: []string{"diabetic nephropathy", "diabetic retinopathy", "diabetic neuropathy"}},
}

// fallbackTerms is scanned when no category synonym matches at all.
var fallbackTerms = []string{"diabetes", "heart", "kidney", "failure", "chronic", "acute"}

var (
	chronicMarkers  = []string{"chronic", "long-term", "ongoing"}
	severeMarkers   = []string{"severe", "critical", "advanced"}
	moderateMarkers = []string{"moderate", "stable"}
)

// ─── EXTRACTION ───────────────────────────────────────────────────────────────

// Extract scans the concatenated diagnosis, notes, and history text and
// returns the condition signals. It has no error path: unrecognizable text
// yields a populated Signals with PrimaryCondition set to PrimaryUnknown.
func Extract(primaryDiagnosis, clinicalNotes, medicalHistory string) Signals {
	text := strings.ToLower(primaryDiagnosis + " " + clinicalNotes + " " + medicalHistory)

	var keywords []string
	seen := make(map[string]struct{})
	primary := PrimaryUnknown

	for _, cat := range conditionCategories {
		for _, syn := range cat.synonyms {
			if !strings.Contains(text, syn) {
				continue
			}
			if _, dup := seen[syn]; !dup {
				seen[syn] = struct{}{}
				keywords = append(keywords, syn)
			}
			if cat.privileged && primary == PrimaryUnknown {
				primary = cat.tag
			}
		}
	}

	if len(keywords) == 0 {
		for _, term := range fallbackTerms {
			if strings.Contains(text, term) {
				keywords = append(keywords, term)
			}
		}
	}

	var secondary []string
	if len(keywords) >= 2 {
		end := min(3, len(keywords))
		secondary = append(secondary, keywords[1:end]...)
	}

	return Signals{
		Keywords:            keywords,
		PrimaryCondition:    primary,
		SecondaryConditions: secondary,
		Chronicity:          detectChronicity(text),
		Severity:            detectSeverity(text),
	}
}

func detectChronicity(text string) Chronicity {
	if containsAny(text, chronicMarkers) {
		return ChronicityChronic
	}
	return ChronicityAcute
}

func detectSeverity(text string) Severity {
	switch {
	case containsAny(text, severeMarkers):
		return SeveritySevere
	case containsAny(text, moderateMarkers):
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// containsAny reports whether any of the terms occurs as a substring of text.
// Text must already be lower-cased; terms in the package tables are.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
