package llm

import (
	"fmt"
	"strings"

	"github.com/nikogura/cost-counsel/pkg/advisor"
	"github.com/nikogura/cost-counsel/pkg/guard"
)

// buildExplanationPrompt builds the prompt for explaining a computed cost
// result. Every figure, citation, and force marker the text is allowed to
// contain is spelled out, and violations from a prior attempt are fed back
// as explicit corrections.
func buildExplanationPrompt(req advisor.ExplainRequest) (prompt string) {
	var sb strings.Builder

	sb.WriteString("You are explaining a party-and-party costs determination to a litigant.\n")
	sb.WriteString("Write a short plain-language explanation of the result below.\n\n")

	sb.WriteString("COMPUTED RESULT:\n")
	for _, field := range req.GroundTruth.Fields {
		switch field.Kind {
		case guard.KindAmount:
			sb.WriteString(fmt.Sprintf("- %s: $%.2f\n", field.Name, field.Number))
		case guard.KindCount:
			sb.WriteString(fmt.Sprintf("- %s: %g\n", field.Name, field.Number))
		case guard.KindCategory:
			sb.WriteString(fmt.Sprintf("- %s: %s\n", field.Name, field.Text))
		}
	}

	if len(req.GroundTruth.Citations) > 0 {
		sb.WriteString(fmt.Sprintf("\nAUTHORITY: %s\n", strings.Join(req.GroundTruth.Citations, ", ")))
	}

	switch req.GroundTruth.Force {
	case guard.ForceMandatory:
		sb.WriteString("\nThis amount is FIXED by the rules. Describe it as mandatory.\n")
	case guard.ForceProhibited:
		sb.WriteString("\nThese costs are PROHIBITED. Describe them as not claimable.\n")
	default:
		sb.WriteString("\nThis amount is DISCRETIONARY. Describe it as subject to the court's discretion.\n")
	}

	sb.WriteString("\nRULES:\n")
	sb.WriteString("1. Use the exact figures above. Never round, estimate, or invent any dollar amount or count.\n")
	sb.WriteString("2. Cite only the authority listed above. Never cite any other order, rule, or appendix.\n")
	sb.WriteString("3. Do not contradict the binding force stated above.\n")
	sb.WriteString("4. Respond with the explanation text only, no markdown, no preamble.\n")

	if len(req.Violations) > 0 {
		sb.WriteString("\nYOUR PREVIOUS ATTEMPT WAS REJECTED FOR THESE ERRORS:\n")
		for _, v := range req.Violations {
			sb.WriteString(fmt.Sprintf("- %s", v.Kind))
			if v.Token != "" {
				sb.WriteString(fmt.Sprintf(": you wrote %q", v.Token))
			}
			if v.Expected != "" {
				sb.WriteString(fmt.Sprintf(", the correct value is %q", v.Expected))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("Correct every error above.\n")
	}

	prompt = sb.String()
	return prompt
}
