package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nikogura/cost-counsel/pkg/config"
	"github.com/nikogura/cost-counsel/pkg/costs"
	"github.com/nikogura/cost-counsel/pkg/gaps"
	"github.com/nikogura/cost-counsel/pkg/guard"
	"github.com/nikogura/cost-counsel/pkg/matching"
	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// pipeline holds the wired advisory components for one CLI invocation.
type pipeline struct {
	cfg       config.Config
	store     *rulebase.Store
	engine    *matching.Engine
	evaluator *gaps.Evaluator
	schedule  *costs.Schedule
	validator *guard.Validator
	logger    *zap.Logger
}

// buildPipeline loads the config and rule bundle and wires the advisory
// components. Rule-base problems are configuration errors; they all surface
// here, before any request is served.
func buildPipeline() (p *pipeline, err error) {
	p = &pipeline{}

	p.cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return p, err
	}

	p.logger, err = buildLogger()
	if err != nil {
		err = errors.Wrap(err, "failed to build logger")
		return p, err
	}

	var nodes []rulebase.RuleNode
	var entries []costs.Entry
	nodes, entries, err = config.LoadBundle(p.cfg.NodesFile)
	if err != nil {
		err = errors.Wrap(err, "failed to load rule bundle")
		return p, err
	}

	p.store = rulebase.NewStore()
	err = p.store.Register(nodes)
	if err != nil {
		err = errors.Wrap(err, "rule base rejected")
		return p, err
	}

	p.engine, err = matching.NewEngine(p.store, p.cfg.EngineWeights(), p.cfg.Matching.MatchThreshold)
	if err != nil {
		err = errors.Wrap(err, "failed to build matching engine")
		return p, err
	}

	var warnings []string
	p.evaluator, warnings, err = gaps.NewEvaluator(p.store, p.cfg.GapConfig())
	if err != nil {
		err = errors.Wrap(err, "failed to build gap evaluator")
		return p, err
	}
	for _, warning := range warnings {
		p.logger.Warn("gap evaluator", zap.String("warning", warning))
	}

	p.schedule, err = costs.NewSchedule(p.store, entries)
	if err != nil {
		err = errors.Wrap(err, "failed to build cost schedule")
		return p, err
	}

	p.validator = guard.NewValidator(p.store.Citations())

	return p, err
}

// parseFacts reads case facts from a JSON file path or an inline JSON
// object.
func parseFacts(arg string) (facts rulebase.FactSet, err error) {
	raw := arg
	if _, statErr := os.Stat(arg); statErr == nil {
		var data []byte
		data, err = os.ReadFile(arg)
		if err != nil {
			err = errors.Wrapf(err, "failed to read facts file: %s", arg)
			return facts, err
		}
		raw = string(data)
	}

	if !gjson.Valid(raw) {
		err = errors.New("facts must be a JSON object of field name to value")
		return facts, err
	}

	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		err = errors.New("facts must be a JSON object of field name to value")
		return facts, err
	}

	values := map[string]interface{}{}
	parsed.ForEach(func(key, value gjson.Result) bool {
		values[key.String()] = value.Value()
		return true
	})

	facts = rulebase.NewFactSet(values)
	return facts, err
}

// printJSON writes indented JSON to stdout.
func printJSON(v interface{}) (err error) {
	var data []byte
	data, err = json.MarshalIndent(v, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal output")
		return err
	}
	fmt.Println(string(data))
	return err
}
