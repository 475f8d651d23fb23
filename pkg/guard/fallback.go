package guard

import (
	"fmt"
	"sort"
	"strings"
)

// RenderFallback builds a plain, fully deterministic presentation of the
// ground truth with no AI-authored prose. This is the fail-closed path when
// the retry budget is exhausted or no generator is configured.
func RenderFallback(gt GroundTruth) (text string) {
	lines := []string{}

	fields := append([]ProtectedField{}, gt.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	total, hasTotal := gt.Amount("total")
	if hasTotal {
		switch gt.Force {
		case ForceDiscretionary:
			lines = append(lines, fmt.Sprintf("The court may allow costs of $%s.", formatAmount(total)))
		case ForceProhibited:
			lines = append(lines, fmt.Sprintf("Costs of $%s must not be claimed under the applicable rule.", formatAmount(total)))
		default:
			lines = append(lines, fmt.Sprintf("The costs payable are fixed at $%s.", formatAmount(total)))
		}
	}

	for _, field := range fields {
		if field.Name == "total" && field.Kind == KindAmount {
			continue
		}
		switch field.Kind {
		case KindAmount:
			lines = append(lines, fmt.Sprintf("%s: $%s", humanize(field.Name), formatAmount(field.Number)))
		case KindCount:
			lines = append(lines, fmt.Sprintf("%s: %g", humanize(field.Name), field.Number))
		case KindCategory:
			lines = append(lines, fmt.Sprintf("%s: %s", humanize(field.Name), field.Text))
		}
	}

	if len(gt.Citations) > 0 {
		refs := append([]string{}, gt.Citations...)
		sort.Strings(refs)
		lines = append(lines, "Authority: "+strings.Join(refs, ", ")+".")
	}

	text = strings.Join(lines, "\n")
	return text
}

func humanize(fieldName string) (label string) {
	words := strings.Split(fieldName, "_")
	if len(words) > 0 && words[0] != "" {
		words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	}
	label = strings.Join(words, " ")
	return label
}
