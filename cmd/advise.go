package cmd

import (
	"context"

	"github.com/nikogura/cost-counsel/pkg/advisor"
	"github.com/nikogura/cost-counsel/pkg/llm"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var adviseFacts string

//nolint:gochecknoglobals // Cobra boilerplate
var adviseNoGenerate bool

//nolint:gochecknoglobals // Cobra boilerplate
var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run one advisory request end to end",
	Long: `Runs the full advisory pipeline for one set of case facts: match against
the rule base, report gaps, calculate the scheduled costs, and produce a
validated explanation.

If the facts are incomplete the output asks for the missing information
instead of calculating. Generated prose that contradicts the computed result
is rejected and regenerated; once the retry budget is spent the computed
result is presented on its own.

  cost-counsel advise --facts case.json
  cost-counsel advise --facts '{"case_type": "default_judgment"}' --no-generate`,
	RunE: runAdvise,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(adviseCmd)
	adviseCmd.Flags().StringVar(&adviseFacts, "facts", "", "Case facts as inline JSON or a path to a JSON file")
	adviseCmd.Flags().BoolVar(&adviseNoGenerate, "no-generate", false, "Skip generated prose and present the computed result directly")
	_ = adviseCmd.MarkFlagRequired("facts")
}

func runAdvise(cmd *cobra.Command, args []string) (err error) {
	var p *pipeline
	p, err = buildPipeline()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	facts, err := parseFacts(adviseFacts)
	if err != nil {
		return err
	}

	// Without an API key every answer uses the deterministic rendering of
	// the computed result.
	var generator advisor.Generator
	if !adviseNoGenerate && p.cfg.Anthropic.APIKey != "" {
		generator = llm.NewClient(p.cfg.Anthropic.APIKey, p.cfg.Anthropic.Model)
	}

	adv, err := advisor.New(p.engine, p.evaluator, p.schedule, generator, p.validator, p.logger, p.cfg.MaxAttempts)
	if err != nil {
		return err
	}

	advice, err := adv.Advise(context.Background(), facts)
	if err != nil {
		return err
	}

	err = printJSON(advice)
	return err
}
