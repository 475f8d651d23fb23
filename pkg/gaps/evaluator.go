// Package gaps turns ranked match results into a completeness and
// missing-information report. Ambiguity between near-tied nodes is not an
// error; it is surfaced here for the caller to resolve, typically by asking
// the user for more facts. Tie resolution is always deferred to the caller.
package gaps

import (
	"fmt"
	"sort"

	"github.com/nikogura/cost-counsel/pkg/matching"
	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
)

// Config controls gap evaluation for one module.
type Config struct {
	// CompletenessThreshold is the confidence the top match must reach,
	// with no missing fields, for the report to be complete.
	CompletenessThreshold float64
	// TieMargin widens the set of matches whose missing fields are
	// reported: every result within TieMargin of the top score
	// contributes, so the report does not collapse prematurely onto one
	// branch when several are nearly tied.
	TieMargin float64
	// RequiredFields is the module's required-field list used for the
	// completeness score.
	RequiredFields []string
}

// MissingField is one outstanding field with the rule citations that need it.
type MissingField struct {
	Field string `json:"field"`
	// Rationale explains which source rules reference the field.
	Rationale string `json:"rationale"`
	// Nodes lists the candidate node ids that reference the field, sorted.
	Nodes []string `json:"nodes"`
}

// GapReport is the completeness and missing-information report for one
// request.
type GapReport struct {
	Complete     bool           `json:"complete"`
	Completeness float64        `json:"completeness"`
	Outstanding  []MissingField `json:"outstanding"`
	// Candidates lists the node ids within the tie margin of the top
	// score, ambiguity included, for the caller to resolve.
	Candidates []string `json:"candidates"`
}

// Evaluator computes gap reports against one module's configuration.
type Evaluator struct {
	store *rulebase.Store
	cfg   Config
}

// NewEvaluator builds an evaluator over a sealed store. A required field
// that no registered node ever references is a configuration smell but not
// fatal; it is returned as a warning for the caller to log.
func NewEvaluator(store *rulebase.Store, cfg Config) (evaluator *Evaluator, warnings []string, err error) {
	if store == nil || !store.Sealed() {
		err = errors.New("gap evaluator requires a sealed rule store")
		return evaluator, warnings, err
	}
	if cfg.CompletenessThreshold < 0 || cfg.CompletenessThreshold > 1 {
		err = errors.Errorf("completeness threshold %g outside [0, 1]", cfg.CompletenessThreshold)
		return evaluator, warnings, err
	}
	if cfg.TieMargin < 0 || cfg.TieMargin > 1 {
		err = errors.Errorf("tie margin %g outside [0, 1]", cfg.TieMargin)
		return evaluator, warnings, err
	}

	for _, field := range cfg.RequiredFields {
		referenced := false
		for _, node := range store.All() {
			if node.References(field) {
				referenced = true
				break
			}
		}
		if !referenced {
			warnings = append(warnings, fmt.Sprintf("required field %q is referenced by no rule node", field))
		}
	}

	evaluator = &Evaluator{store: store, cfg: cfg}
	return evaluator, warnings, err
}

// Compute builds the gap report for one set of ranked match results. Pure
// and deterministic; the results are expected in Match order (confidence
// descending).
func (e *Evaluator) Compute(results []matching.MatchResult, facts rulebase.FactSet) (report GapReport) {
	report.Completeness = e.completeness(facts)
	report.Outstanding = []MissingField{}

	if len(results) == 0 {
		report.Outstanding = e.unknownRequired(facts)
		report.Candidates = []string{}
		return report
	}

	top := results[0]
	report.Candidates = candidateIDs(results, top.Confidence, e.cfg.TieMargin)

	if top.Confidence >= e.cfg.CompletenessThreshold && len(top.Missing) == 0 {
		report.Complete = true
		report.Completeness = 1.0
		return report
	}

	// Union the missing fields of every near-tied candidate, with
	// rationale drawn from each node's citation.
	nodesByField := map[string][]string{}
	for _, result := range results {
		if result.Confidence < top.Confidence-e.cfg.TieMargin {
			continue
		}
		for _, field := range result.Missing {
			nodesByField[field] = append(nodesByField[field], result.NodeID)
		}
	}

	fields := make([]string, 0, len(nodesByField))
	for field := range nodesByField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		nodes := dedupeSorted(nodesByField[field])
		report.Outstanding = append(report.Outstanding, MissingField{
			Field:     field,
			Rationale: e.rationaleFor(field, nodes),
			Nodes:     nodes,
		})
	}

	return report
}

// completeness is 1 - unknownRequired/totalRequired, clamped to [0, 1].
// With no required fields configured the score is 1.0 by definition.
func (e *Evaluator) completeness(facts rulebase.FactSet) (score float64) {
	total := len(e.cfg.RequiredFields)
	if total == 0 {
		score = 1.0
		return score
	}

	unknown := 0
	for _, field := range e.cfg.RequiredFields {
		if !facts.Has(field) {
			unknown++
		}
	}

	score = 1.0 - float64(unknown)/float64(total)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func (e *Evaluator) unknownRequired(facts rulebase.FactSet) (outstanding []MissingField) {
	outstanding = []MissingField{}
	for _, field := range e.cfg.RequiredFields {
		if facts.Has(field) {
			continue
		}
		outstanding = append(outstanding, MissingField{
			Field:     field,
			Rationale: "required by module configuration",
			Nodes:     []string{},
		})
	}
	sort.Slice(outstanding, func(i, j int) bool { return outstanding[i].Field < outstanding[j].Field })
	return outstanding
}

func (e *Evaluator) rationaleFor(field string, nodes []string) (rationale string) {
	refs := []string{}
	for _, id := range nodes {
		node, ok := e.store.Get(id)
		if !ok {
			continue
		}
		ref := node.Citation.Ref
		if node.Citation.Title != "" {
			ref = fmt.Sprintf("%s (%s)", node.Citation.Ref, node.Citation.Title)
		}
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	rationale = fmt.Sprintf("%s is required by %s", field, joinAnd(refs))
	return rationale
}

func candidateIDs(results []matching.MatchResult, topConfidence, margin float64) (ids []string) {
	ids = []string{}
	for _, result := range results {
		if result.Confidence >= topConfidence-margin {
			ids = append(ids, result.NodeID)
		}
	}
	sort.Strings(ids)
	return ids
}

func dedupeSorted(values []string) (out []string) {
	seen := map[string]bool{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func joinAnd(values []string) (joined string) {
	switch len(values) {
	case 0:
		joined = "the module configuration"
	case 1:
		joined = values[0]
	default:
		joined = ""
		for i, v := range values {
			switch {
			case i == 0:
				joined = v
			case i == len(values)-1:
				joined += " and " + v
			default:
				joined += ", " + v
			}
		}
	}
	return joined
}
