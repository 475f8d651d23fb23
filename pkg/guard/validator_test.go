package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultJudgmentTruth() (gt GroundTruth) {
	gt = GroundTruth{
		Fields: []ProtectedField{
			{Name: "total", Kind: KindAmount, Number: 4000.00},
			{
				Name:     "court_level",
				Kind:     KindCategory,
				Text:     "High Court",
				Variants: []string{"High Court", "District Court", "Magistrates' Court"},
			},
		},
		Citations: []string{"ORDER_21_APPX1_A1a"},
		Force:     ForceMandatory,
	}
	return gt
}

func TestValidatePassesVerbatimText(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	text := "In the High Court, the costs payable are fixed at $4,000.00 under Order 21, Appendix 1 (ORDER_21_APPX1_A1a)."
	outcome := validator.Validate(gt, text, gt.Citations)

	assert.True(t, outcome.Passed)
	assert.Empty(t, outcome.Violations)
	assert.False(t, outcome.Exhausted)
}

func TestValidateAlteredAmount(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	text := "In the High Court, the total costs of $4,500 are fixed under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)

	violation := outcome.Violations[0]
	assert.Equal(t, NumericMismatch, violation.Kind)
	assert.Equal(t, "total", violation.Field)
	assert.Equal(t, "4000.00", violation.Expected)
	assert.Equal(t, "4500.00", violation.Actual)
	assert.Contains(t, violation.Token, "4,500")
}

func TestValidateAlteredAmountInWordCurrencyForm(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	// No currency symbol and no cents; the figure still plausibly denotes
	// the protected total and must not slip past the check.
	text := "In the High Court, the costs payable are fixed at 4,500 dollars under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)

	violation := outcome.Violations[0]
	assert.Equal(t, NumericMismatch, violation.Kind)
	assert.Equal(t, "total", violation.Field)
	assert.Equal(t, "4000.00", violation.Expected)
	assert.Equal(t, "4500.00", violation.Actual)
}

func TestValidateAlteredBareFigureInCostContext(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	tests := []struct {
		name string
		text string
	}{
		{"costs of", "In the High Court, costs of 4,500 are fixed under ORDER_21_APPX1_A1a."},
		{"fixed at", "In the High Court, the costs payable are fixed at 4500 under ORDER_21_APPX1_A1a."},
		{"word cents", "In the High Court, the costs payable amount to 450000 cents under ORDER_21_APPX1_A1a."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := validator.Validate(gt, tt.text, gt.Citations)
			require.False(t, outcome.Passed)
			require.Len(t, outcome.Violations, 1)
			assert.Equal(t, NumericMismatch, outcome.Violations[0].Kind)
			assert.Equal(t, "total", outcome.Violations[0].Field)
		})
	}

	// The same forms stating the true figure still pass.
	outcome := validator.Validate(gt, "In the High Court, costs of 4,000 dollars are fixed under ORDER_21_APPX1_A1a.", gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestValidateFabricatedCitation(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	text := "Costs are fixed at $4,000.00 in the High Court by Order 21, Rule 99."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, UnknownCitation, outcome.Violations[0].Kind)
	assert.Contains(t, outcome.Violations[0].Token, "Rule 99")
}

func TestValidateCitationResolvesThroughRegistry(t *testing.T) {
	// ORDER_21_R5 is not among the ground truth's own citations but is a
	// known rule in the module registry, so citing it is legitimate.
	validator := NewValidator([]string{"ORDER_21_R5"})
	gt := defaultJudgmentTruth()

	text := "Costs in the High Court are fixed at $4,000.00; see also ORDER_21_R5."
	outcome := validator.Validate(gt, text, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestValidateParentReferenceOfValidCitation(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	// "Order 21" and "Appendix 1" are ancestors of ORDER_21_APPX1_A1a.
	text := "Under Order 21 and Appendix 1, costs in the High Court are fixed at $4,000.00."
	outcome := validator.Validate(gt, text, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestValidateCategorySubstitution(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	text := "In the District Court, costs are fixed at $4,000.00 under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, NumericMismatch, outcome.Violations[0].Kind)
	assert.Equal(t, "court_level", outcome.Violations[0].Field)
	assert.Equal(t, "High Court", outcome.Violations[0].Expected)
	assert.Equal(t, "District Court", outcome.Violations[0].Actual)
}

func TestValidateComparativeCategoryMentionSurvives(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	// Naming the other branch while stating the true one is not tampering.
	text := "Unlike the District Court scale, in the High Court costs are fixed at $4,000.00 under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestValidateCountMismatch(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()
	gt.Fields = append(gt.Fields, ProtectedField{Name: "trial_days", Kind: KindCount, Number: 3})

	text := "After 5 trial days in the High Court, costs are fixed at $4,000.00 under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, NumericMismatch, outcome.Violations[0].Kind)
	assert.Equal(t, "trial_days", outcome.Violations[0].Field)
	assert.Equal(t, "3", outcome.Violations[0].Expected)
	assert.Equal(t, "5", outcome.Violations[0].Actual)
}

func TestValidateTerminologyContradiction(t *testing.T) {
	validator := NewValidator(nil)

	gt := defaultJudgmentTruth()
	gt.Force = ForceDiscretionary

	// The backing rule is discretionary; prose asserting the award is
	// mandatory corrupts the advice even with correct figures.
	text := "The court must award $4,000.00 in the High Court under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, TerminologyViolation, outcome.Violations[0].Kind)
	assert.Equal(t, ForceDiscretionary, outcome.Violations[0].Expected)
	assert.Equal(t, ForceMandatory, outcome.Violations[0].Actual)
}

func TestValidateMustNotIsNotMandatory(t *testing.T) {
	validator := NewValidator(nil)

	gt := defaultJudgmentTruth()
	gt.Force = ForceProhibited
	gt.Fields = gt.Fields[1:] // no protected amount for this rule

	text := "These costs must not be claimed in the High Court; see ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestValidateFabricatedAmountWithNoProtectedAmounts(t *testing.T) {
	validator := NewValidator(nil)

	gt := defaultJudgmentTruth()
	gt.Fields = gt.Fields[1:] // category only

	text := "Costs of $1,200.00 apply in the High Court under ORDER_21_APPX1_A1a."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, NumericMismatch, outcome.Violations[0].Kind)
	assert.Empty(t, outcome.Violations[0].Field)
}

func TestValidateToleranceToTheCent(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	// 4000.004 rounds within the cent tolerance; 4000.01 does not.
	outcome := validator.Validate(gt, "High Court costs: $4000.004 (ORDER_21_APPX1_A1a).", gt.Citations)
	assert.True(t, outcome.Passed)

	outcome = validator.Validate(gt, "High Court costs: $4000.01 (ORDER_21_APPX1_A1a).", gt.Citations)
	assert.False(t, outcome.Passed)
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	text := "In the District Court the court may award $9,999.00 under Order 21, Rule 99."
	outcome := validator.Validate(gt, text, gt.Citations)

	require.False(t, outcome.Passed)

	kinds := map[ViolationKind]bool{}
	for _, violation := range outcome.Violations {
		kinds[violation.Kind] = true
	}
	assert.True(t, kinds[NumericMismatch])
	assert.True(t, kinds[UnknownCitation])
	assert.True(t, kinds[TerminologyViolation])
}

func TestValidateDeterministic(t *testing.T) {
	validator := NewValidator([]string{"ORDER_21_R5"})
	gt := defaultJudgmentTruth()

	text := "Costs of $4,500.00 and $9,000.00 under Order 5, Rule 1 in the District Court may be awarded."
	first := validator.Validate(gt, text, gt.Citations)
	second := validator.Validate(gt, text, gt.Citations)
	assert.Equal(t, first, second)
}

func TestValidateHostileTextShapes(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()

	// Empty text asserts nothing and cannot contradict the result.
	outcome := validator.Validate(gt, "", gt.Citations)
	assert.True(t, outcome.Passed)
	assert.Empty(t, outcome.Violations)

	// Invalid UTF-8 around a tampered figure: the outcome stays structured
	// and the figure is still caught.
	mangled := string([]byte{0xff, 0xfe}) + " costs of $4,500.00 apply " + string([]byte{0x80})
	outcome = validator.Validate(gt, mangled, gt.Citations)
	require.False(t, outcome.Passed)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, NumericMismatch, outcome.Violations[0].Kind)

	// Multi-megabyte input returns a normal outcome.
	huge := strings.Repeat("In the High Court the costs payable are fixed at $4,000.00 under ORDER_21_APPX1_A1a. ", 50000)
	outcome = validator.Validate(gt, huge, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestRetryBudget(t *testing.T) {
	budget := NewRetryBudget(2)
	assert.False(t, budget.Exhausted())
	assert.Equal(t, 2, budget.Remaining())

	assert.True(t, budget.Spend())
	assert.True(t, budget.Spend())
	assert.False(t, budget.Spend())
	assert.True(t, budget.Exhausted())
	assert.Equal(t, 0, budget.Remaining())

	assert.True(t, NewRetryBudget(0).Exhausted())
}

func TestRenderFallbackPassesItsOwnValidation(t *testing.T) {
	validator := NewValidator(nil)
	gt := defaultJudgmentTruth()
	gt.Fields = append(gt.Fields, ProtectedField{Name: "trial_days", Kind: KindCount, Number: 3})

	text := RenderFallback(gt)
	assert.Contains(t, text, "4000.00")
	assert.Contains(t, text, "ORDER_21_APPX1_A1a")
	assert.Contains(t, text, "High Court")

	outcome := validator.Validate(gt, text, gt.Citations)
	assert.True(t, outcome.Passed)
}

func TestRenderFallbackForces(t *testing.T) {
	gt := defaultJudgmentTruth()

	gt.Force = ForceDiscretionary
	assert.Contains(t, RenderFallback(gt), "may allow")

	gt.Force = ForceMandatory
	assert.Contains(t, RenderFallback(gt), "fixed at")

	gt.Force = ForceProhibited
	assert.Contains(t, RenderFallback(gt), "must not be claimed")
}
