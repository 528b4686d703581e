package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Profile carries the patient demographics supplied by the caller. Age and
// gender are both optional; when either is missing the risk multiplier is
// fixed at 1.0 and no demographic narrative is produced.
type Profile struct {
	Age    *int
	Gender string // "female"/"f" or "male"/"m", case-insensitive; "" = absent
}

// Complete reports whether both age and gender were supplied.
func (p Profile) Complete() bool {
	return p.Age != nil && strings.TrimSpace(p.Gender) != ""
}

func (p Profile) female() bool {
	g := strings.ToLower(strings.TrimSpace(p.Gender))
	return g == "female" || g == "f"
}

func (p Profile) male() bool {
	g := strings.ToLower(strings.TrimSpace(p.Gender))
	return g == "male" || g == "m"
}

// ─── KEYWORD CLASSES ─────────────────────────────────────────────────────────

// Term sets for the condition/age interactions. Matched as substrings of the
// joined keyword list, mirroring the extractor's synonym vocabulary.
var (
	cardiacTerms  = []string{"heart", "cardiac", "coronary", "myocardial"}
	diabetesTerms = []string{"diabetes", "diabetic"}
	kidneyTerms   = []string{"kidney", "renal"}
)

// RiskMultiplier computes the bounded demographic risk multiplier from age,
// gender, and the active condition keywords. The age bands and condition
// interactions are cumulative; the result is clamped to
// [MultiplierMin, MultiplierMax] and rounded to 2 decimals.
//
// An incomplete profile short-circuits to exactly 1.0 — absence of
// demographics is not an error, it simply disables adjustment.
func (c Config) RiskMultiplier(profile Profile, keywords []string) float64 {
	if !profile.Complete() {
		return 1.0
	}
	age := *profile.Age
	conditionText := strings.ToLower(strings.Join(keywords, " "))

	multiplier := 1.0

	// Age bands.
	switch {
	case age >= 85:
		multiplier += 0.8
	case age >= 75:
		multiplier += 0.6
	case age >= 65:
		multiplier += 0.4
	case age >= 50:
		multiplier += 0.2
	case age < 30:
		multiplier -= 0.3
	}

	// Gender interactions.
	if profile.female() {
		if age >= 65 && containsAnyTerm(conditionText, cardiacTerms) {
			multiplier += 0.1
		}
	} else if profile.male() && age >= 45 {
		multiplier += 0.1
	}

	// Condition-specific age interactions, each independently additive.
	if containsAnyTerm(conditionText, diabetesTerms) && age >= 60 {
		multiplier += 0.2
	}
	if containsAnyTerm(conditionText, cardiacTerms) {
		if age >= 70 {
			multiplier += 0.3
		} else if age >= 50 {
			multiplier += 0.1
		}
	}
	if containsAnyTerm(conditionText, kidneyTerms) && age >= 65 {
		multiplier += 0.25
	}

	multiplier = math.Min(c.MultiplierMax, math.Max(c.MultiplierMin, multiplier))
	return math.Round(multiplier*100) / 100
}

// demographicSummary builds the narrative block shown alongside the
// suggestions. Callers only invoke it for complete profiles.
func demographicSummary(profile Profile, multiplier float64) *DemographicSummary {
	age := *profile.Age

	ageGroup := "Youth (<18)"
	switch {
	case age >= 65:
		ageGroup = "Senior (65+)"
	case age >= 18:
		ageGroup = "Adult (18-64)"
	}

	ageImpact := "Low"
	switch {
	case age >= 70:
		ageImpact = "High"
	case age >= 50:
		ageImpact = "Moderate"
	}

	return &DemographicSummary{
		AgeGroup:             ageGroup,
		RiskMultiplier:       multiplier,
		AgeImpact:            ageImpact,
		GenderConsiderations: fmt.Sprintf("%s - age %d", profile.Gender, age),
	}
}

func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
