package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var matchFacts string

//nolint:gochecknoglobals // Cobra boilerplate
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match case facts against the rule base",
	Long: `Matches case facts against every rule node and prints the results that
cleared the confidence threshold, plus a gap report saying whether the facts
are complete enough to calculate and what to ask for if not.

Facts are a flat JSON object, inline or in a file:

  cost-counsel match --facts '{"case_type": "default_judgment", "court_level": "High Court"}'
  cost-counsel match --facts case.json`,
	RunE: runMatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVar(&matchFacts, "facts", "", "Case facts as inline JSON or a path to a JSON file")
	_ = matchCmd.MarkFlagRequired("facts")
}

func runMatch(cmd *cobra.Command, args []string) (err error) {
	var p *pipeline
	p, err = buildPipeline()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	facts, err := parseFacts(matchFacts)
	if err != nil {
		return err
	}

	results := p.engine.Match(facts)
	report := p.evaluator.Compute(results, facts)

	output := struct {
		Matches interface{} `json:"matches"`
		Gaps    interface{} `json:"gaps"`
	}{
		Matches: results,
		Gaps:    report,
	}

	err = printJSON(output)
	return err
}
