package guard

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ViolationKind names the ways generated text can corrupt a result.
type ViolationKind string

const (
	// NumericMismatch means the text states a figure that contradicts a
	// protected field.
	NumericMismatch ViolationKind = "NUMERIC_MISMATCH"
	// UnknownCitation means the text cites a rule that resolves to no
	// known citation. This is what catches fabricated legal references.
	UnknownCitation ViolationKind = "UNKNOWN_CITATION"
	// TerminologyViolation means the text's modal language contradicts
	// the binding force recorded on the rules backing the result.
	TerminologyViolation ViolationKind = "TERMINOLOGY_VIOLATION"
)

// Violation is one structured finding. Violations are always returned as
// data, never raised as errors, so the safety path cannot be bypassed by
// error-handling bugs upstream.
type Violation struct {
	Kind ViolationKind `json:"kind"`
	// Field is the protected field involved, when one can be named.
	Field string `json:"field,omitempty"`
	// Token is the offending span of text.
	Token    string `json:"token"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// ValidationOutcome is the verdict on one candidate text. Absence of an
// explicit pass must be treated by the caller as failure.
type ValidationOutcome struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations"`
	// Exhausted is set by the orchestration layer when its retry budget
	// is spent and the caller must fall back to ground truth alone.
	Exhausted bool `json:"exhausted,omitempty"`
}

// DefaultTolerance is the rounding tolerance for amount comparison: figures
// must agree to the cent.
const DefaultTolerance = 0.005

// Validator checks candidate text against a ground truth. It carries the
// module-wide known-citation registry; per-call valid citations come from
// the ground truth itself. Stateless between calls and safe for concurrent
// use.
type Validator struct {
	registry  map[string]bool
	tolerance float64
}

// NewValidator builds a validator over the module's known citation refs
// (typically Store.Citations()).
func NewValidator(knownCitations []string) (validator *Validator) {
	validator = &Validator{
		registry:  expandCitations(knownCitations),
		tolerance: DefaultTolerance,
	}
	return validator
}

// Validate cross-checks the candidate text against the ground truth and the
// citations that justify it. Zero violations is a pass and the text is
// returned to the caller unchanged; the validator never rewrites anything.
func (v *Validator) Validate(gt GroundTruth, candidateText string, validCitations []string) (outcome ValidationOutcome) {
	outcome.Violations = []Violation{}

	outcome.Violations = append(outcome.Violations, v.checkNumbers(gt, candidateText)...)
	outcome.Violations = append(outcome.Violations, v.checkCitations(gt, candidateText, validCitations)...)
	outcome.Violations = append(outcome.Violations, v.checkTerminology(gt, candidateText)...)

	outcome.Passed = len(outcome.Violations) == 0
	return outcome
}

var (
	// Currency-denoted amounts: $4,500 / S$4,500.00 / €300.
	currencyAmountRe = regexp.MustCompile(`(?:S?\$|€|£)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	// Bare amounts written to the cent: 4,000.00.
	decimalAmountRe = regexp.MustCompile(`\b([0-9][0-9,]*\.[0-9]{2})\b`)
	// Word-currency amounts: "4,500 dollars", "50 cents".
	wordDollarRe = regexp.MustCompile(`(?i)\b([0-9][0-9,]*(?:\.[0-9]+)?)\s+dollars?\b`)
	wordCentRe   = regexp.MustCompile(`(?i)\b([0-9][0-9,]*(?:\.[0-9]+)?)\s+cents?\b`)
	// Bare figures stated as a cost: "costs of 4,500", "fixed at 4500".
	costContextRe = regexp.MustCompile(`(?i)\b(?:costs?\s+of|fixed\s+at|amount\s+of|total\s+of|sum\s+of|payable\s+(?:is|are)|awards?\s+of)\s+\$?([0-9][0-9,]*(?:\.[0-9]+)?)\b`)
)

// checkNumbers extracts every token that plausibly denotes a protected
// amount, count, or category and requires exact agreement within the
// rounding tolerance.
func (v *Validator) checkNumbers(gt GroundTruth, text string) (violations []Violation) {
	violations = append(violations, v.checkAmounts(gt, text)...)
	violations = append(violations, v.checkCounts(gt, text)...)
	violations = append(violations, v.checkCategories(gt, text)...)
	return violations
}

func (v *Validator) checkAmounts(gt GroundTruth, text string) (violations []Violation) {
	// Several extractors can see the same figure ("$4,000.00", "4,000.00",
	// "costs of 4,000.00"); dedupe by parsed value so one tampered figure
	// yields one violation.
	tokenByValue := map[float64]string{}
	record := func(token string, value float64) {
		if _, seen := tokenByValue[value]; !seen {
			tokenByValue[value] = token
		}
	}
	for _, re := range []*regexp.Regexp{currencyAmountRe, decimalAmountRe, wordDollarRe, costContextRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			record(m[0], parsed)
		}
	}
	for _, m := range wordCentRe.FindAllStringSubmatch(text, -1) {
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		record(m[0], parsed/100)
	}
	if len(tokenByValue) == 0 {
		return violations
	}

	values := make([]float64, 0, len(tokenByValue))
	for value := range tokenByValue {
		values = append(values, value)
	}
	sort.Float64s(values)

	for _, value := range values {
		token := tokenByValue[value]
		nearest, found := v.nearestAmount(gt, value)
		switch {
		case !found:
			// The result protects no amounts at all, so any figure in
			// the text is fabricated. Fail closed.
			violations = append(violations, Violation{
				Kind:   NumericMismatch,
				Token:  token,
				Actual: formatAmount(value),
			})
		case math.Abs(nearest.Number-value) > v.tolerance:
			violations = append(violations, Violation{
				Kind:     NumericMismatch,
				Field:    nearest.Name,
				Token:    token,
				Expected: formatAmount(nearest.Number),
				Actual:   formatAmount(value),
			})
		}
	}
	return violations
}

func (v *Validator) nearestAmount(gt GroundTruth, value float64) (nearest ProtectedField, found bool) {
	best := math.Inf(1)
	for _, field := range gt.Fields {
		if field.Kind != KindAmount {
			continue
		}
		diff := math.Abs(field.Number - value)
		if !found || diff < best {
			nearest = field
			best = diff
			found = true
		}
	}
	return nearest, found
}

// checkCounts looks for integers stated next to the protected field's own
// words ("3 trial days" for trial_days). Absence of a mention is fine;
// a different figure is not.
func (v *Validator) checkCounts(gt GroundTruth, text string) (violations []Violation) {
	for _, field := range gt.Fields {
		if field.Kind != KindCount {
			continue
		}
		re := countPattern(field.Name)
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			stated, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			if math.Abs(stated-field.Number) > v.tolerance {
				violations = append(violations, Violation{
					Kind:     NumericMismatch,
					Field:    field.Name,
					Token:    m[0],
					Expected: strconv.FormatFloat(field.Number, 'f', -1, 64),
					Actual:   strconv.FormatFloat(stated, 'f', -1, 64),
				})
			}
		}
	}
	return violations
}

// countPattern builds a pattern matching "<n> <field words>", tolerating a
// missing plural s on the last word. trial_days matches "3 trial days" and
// "1 trial day".
func countPattern(fieldName string) (re *regexp.Regexp) {
	words := strings.Split(fieldName, "_")
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = regexp.QuoteMeta(word)
	}
	last := len(quoted) - 1
	if strings.HasSuffix(words[last], "s") {
		quoted[last] = regexp.QuoteMeta(strings.TrimSuffix(words[last], "s")) + "s?"
	}
	re = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s+` + strings.Join(quoted, `\s+`) + `\b`)
	return re
}

// checkCategories flags text that asserts a different value of a protected
// enumeration. A variant mention is only a mismatch when the true value is
// absent from the text, so comparative phrasing that names both survives.
func (v *Validator) checkCategories(gt GroundTruth, text string) (violations []Violation) {
	lower := strings.ToLower(text)
	for _, field := range gt.Fields {
		if field.Kind != KindCategory || field.Text == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(field.Text)) {
			continue
		}
		for _, variant := range field.Variants {
			if variant == field.Text {
				continue
			}
			if strings.Contains(lower, strings.ToLower(variant)) {
				violations = append(violations, Violation{
					Kind:     NumericMismatch,
					Field:    field.Name,
					Token:    variant,
					Expected: field.Text,
					Actual:   variant,
				})
			}
		}
	}
	return violations
}
