package cmd

import (
	"encoding/json"
	"os"

	"github.com/nikogura/cost-counsel/pkg/guard"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var validateGroundTruth string

//nolint:gochecknoglobals // Cobra boilerplate
var validateText string

//nolint:gochecknoglobals // Cobra boilerplate
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check explanation text against a computed result",
	Long: `Checks a piece of explanation text against a computed ground truth and
exits nonzero if the text contradicts it.

The check flags three kinds of corruption:
- NUMERIC_MISMATCH: a stated figure contradicts a protected amount or count
- UNKNOWN_CITATION: a cited rule resolves to no known citation
- TERMINOLOGY_VIOLATION: modal language contradicts the rule's binding force

The ground truth is a JSON file:

  {
    "fields": [
      {"name": "total", "kind": "amount", "number": 4000.00}
    ],
    "citations": ["ORDER_21_APPX1_A1a"],
    "force": "mandatory"
  }`,
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateGroundTruth, "ground-truth", "", "Path to the ground truth JSON file")
	validateCmd.Flags().StringVar(&validateText, "text", "", "Path to the text file to check")
	_ = validateCmd.MarkFlagRequired("ground-truth")
	_ = validateCmd.MarkFlagRequired("text")
}

type groundTruthFile struct {
	Fields []struct {
		Name     string   `json:"name"`
		Kind     string   `json:"kind"`
		Number   float64  `json:"number,omitempty"`
		Text     string   `json:"text,omitempty"`
		Variants []string `json:"variants,omitempty"`
	} `json:"fields"`
	Citations []string `json:"citations"`
	Force     string   `json:"force"`
}

func runValidate(cmd *cobra.Command, args []string) (err error) {
	var p *pipeline
	p, err = buildPipeline()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	var gt guard.GroundTruth
	gt, err = loadGroundTruth(validateGroundTruth)
	if err != nil {
		return err
	}

	var textData []byte
	textData, err = os.ReadFile(validateText)
	if err != nil {
		err = errors.Wrapf(err, "failed to read text file: %s", validateText)
		return err
	}

	outcome := p.validator.Validate(gt, string(textData), gt.Citations)

	err = printJSON(outcome)
	if err != nil {
		return err
	}

	// Fail closed: a non-pass is a nonzero exit.
	if !outcome.Passed {
		cmd.SilenceUsage = true
		err = errors.Errorf("text failed validation with %d violation(s)", len(outcome.Violations))
		return err
	}

	return err
}

func loadGroundTruth(path string) (gt guard.GroundTruth, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read ground truth file: %s", path)
		return gt, err
	}

	var file groundTruthFile
	err = json.Unmarshal(data, &file)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse ground truth file: %s", path)
		return gt, err
	}

	for _, f := range file.Fields {
		var kind guard.ValueKind
		switch f.Kind {
		case "amount":
			kind = guard.KindAmount
		case "count":
			kind = guard.KindCount
		case "category":
			kind = guard.KindCategory
		default:
			err = errors.Errorf("unknown field kind %q for field %q", f.Kind, f.Name)
			return gt, err
		}
		gt.Fields = append(gt.Fields, guard.ProtectedField{
			Name:     f.Name,
			Kind:     kind,
			Number:   f.Number,
			Text:     f.Text,
			Variants: f.Variants,
		})
	}

	gt.Citations = file.Citations
	gt.Force = file.Force

	return gt, err
}
