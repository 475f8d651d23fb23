package guard

import (
	"regexp"
)

// Binding-force names carried on a GroundTruth.
const (
	ForceMandatory     = "mandatory"
	ForceDiscretionary = "discretionary"
	ForceProhibited    = "prohibited"
)

// Modal-language markers, scanned in order: prohibited phrases are masked
// out before mandatory ones so "must not" never reads as "must", and
// mandatory before discretionary.
var (
	prohibitedRe = regexp.MustCompile(`(?i)\b(must not|may not|shall not|cannot be (?:claimed|recovered)|is prohibited|not permitted|is forbidden)\b`)
	mandatoryRe  = regexp.MustCompile(`(?i)\b(must|shall|is mandatory|is required|is fixed|are fixed|is obliged)\b`)
	discretionRe = regexp.MustCompile(`(?i)\b(may|is discretionary|at the court'?s discretion|optional)\b`)
)

// checkTerminology flags contradictions between the text's modal language
// and the binding force recorded on the rules backing the result: prose
// asserting a discretionary award is mandatory (or the reverse) corrupts
// the advice even when every figure is right.
func (v *Validator) checkTerminology(gt GroundTruth, text string) (violations []Violation) {
	if gt.Force == "" {
		return violations
	}

	remaining := text

	prohibitedToken := firstMatch(prohibitedRe, remaining)
	remaining = prohibitedRe.ReplaceAllString(remaining, " ")

	mandatoryToken := firstMatch(mandatoryRe, remaining)
	remaining = mandatoryRe.ReplaceAllString(remaining, " ")

	discretionToken := firstMatch(discretionRe, remaining)

	asserted := []struct {
		force string
		token string
	}{
		{ForceProhibited, prohibitedToken},
		{ForceMandatory, mandatoryToken},
		{ForceDiscretionary, discretionToken},
	}

	for _, a := range asserted {
		if a.token == "" || a.force == gt.Force {
			continue
		}
		violations = append(violations, Violation{
			Kind:     TerminologyViolation,
			Token:    a.token,
			Expected: gt.Force,
			Actual:   a.force,
		})
	}
	return violations
}

func firstMatch(re *regexp.Regexp, text string) (token string) {
	token = re.FindString(text)
	return token
}
