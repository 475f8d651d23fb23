// Package matching scores case facts against a rule base using six weighted
// dimensions. All operations are pure, synchronous computation: identical
// inputs always produce identical ordered output, including tie order.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
)

// Subscores holds the per-dimension scores behind one match.
type Subscores struct {
	What     float64 `json:"what"`
	Which    float64 `json:"which"`
	IfThen   float64 `json:"if_then"`
	Modality float64 `json:"modality"`
	Given    float64 `json:"given"`
	Why      float64 `json:"why"`
}

// ForKind returns the subscore for one dimension.
func (s Subscores) ForKind(kind rulebase.Kind) (score float64) {
	switch kind {
	case rulebase.KindWhat:
		score = s.What
	case rulebase.KindWhich:
		score = s.Which
	case rulebase.KindIfThen:
		score = s.IfThen
	case rulebase.KindModality:
		score = s.Modality
	case rulebase.KindGiven:
		score = s.Given
	case rulebase.KindWhy:
		score = s.Why
	}
	return score
}

// MatchResult is one scored candidate node. Reproducible: identical facts,
// node, and weights always yield an identical result.
type MatchResult struct {
	NodeID     string    `json:"node_id"`
	Confidence float64   `json:"confidence"`
	Subscores  Subscores `json:"subscores"`
	// Missing lists fields referenced by the node's predicates that are
	// absent from the facts, sorted.
	Missing   []string `json:"missing_fields"`
	Rationale string   `json:"rationale"`
}

// Engine matches case facts against a sealed rule store. Construct one per
// module configuration and share it freely: Match allocates fresh results
// per call and the store is read-only, so no synchronization is needed.
type Engine struct {
	store     *rulebase.Store
	weights   Weights
	threshold float64
}

// NewEngine builds an engine over a sealed store. The weight set and
// threshold are validated here, once, so Match can never fail.
func NewEngine(store *rulebase.Store, weights Weights, threshold float64) (engine *Engine, err error) {
	if store == nil {
		err = errors.New("engine requires a rule store")
		return engine, err
	}
	if !store.Sealed() {
		err = errors.New("engine requires a sealed store; register nodes first")
		return engine, err
	}
	err = weights.Validate()
	if err != nil {
		err = errors.Wrap(err, "invalid weight configuration")
		return engine, err
	}
	if threshold < 0 || threshold > 1 {
		err = errors.Errorf("match threshold %g outside [0, 1]", threshold)
		return engine, err
	}

	engine = &Engine{store: store, weights: weights, threshold: threshold}
	return engine, err
}

// Threshold returns the configured match threshold.
func (e *Engine) Threshold() (threshold float64) {
	threshold = e.threshold
	return threshold
}

// Match scores every registered node against the facts, discards results
// below the threshold, and returns the survivors ordered by confidence
// descending with node id ascending as the tie-break. An empty store yields
// an empty result; an empty FactSet yields low or zero confidences. Neither
// is an error.
func (e *Engine) Match(facts rulebase.FactSet) (results []MatchResult) {
	for _, node := range e.store.All() {
		result := e.score(node, facts)
		if result.Confidence >= e.threshold {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].NodeID < results[j].NodeID
	})

	return results
}

func (e *Engine) score(node *rulebase.RuleNode, facts rulebase.FactSet) (result MatchResult) {
	result.NodeID = node.ID

	satisfied := 0
	total := 0
	contradicted := []string{}

	for _, kind := range rulebase.Kinds() {
		predicates := node.Dimensions.ByKind(kind)
		score := DimensionScore(predicates, facts)
		setSubscore(&result.Subscores, kind, score)
		result.Confidence += e.weights.ForKind(kind) * score

		for _, p := range predicates {
			total++
			switch p.Eval(facts) {
			case rulebase.SatisfactionSatisfied:
				satisfied++
			case rulebase.SatisfactionContradicted:
				contradicted = append(contradicted, p.Describe())
			case rulebase.SatisfactionMissing:
			}
		}
	}

	result.Missing = missingFields(node, facts)
	result.Rationale = buildRationale(satisfied, total, result.Missing, contradicted)

	return result
}

// DimensionScore evaluates one dimension's predicate set against the facts.
// An empty set scores 1.0 (vacuously satisfied, so nodes that do not use a
// dimension are not penalized). Any contradicted predicate caps the score
// at 0. Otherwise the score is the satisfied fraction, which increases
// monotonically with the set of satisfied predicates.
func DimensionScore(predicates []rulebase.Predicate, facts rulebase.FactSet) (score float64) {
	if len(predicates) == 0 {
		score = 1.0
		return score
	}

	satisfied := 0
	for _, p := range predicates {
		switch p.Eval(facts) {
		case rulebase.SatisfactionContradicted:
			score = 0
			return score
		case rulebase.SatisfactionSatisfied:
			satisfied++
		case rulebase.SatisfactionMissing:
		}
	}

	score = float64(satisfied) / float64(len(predicates))
	return score
}

func missingFields(node *rulebase.RuleNode, facts rulebase.FactSet) (missing []string) {
	missing = []string{}
	for _, field := range node.Dimensions.Fields() {
		if !facts.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

func buildRationale(satisfied, total int, missing, contradicted []string) (rationale string) {
	parts := []string{fmt.Sprintf("%d/%d predicates satisfied", satisfied, total)}
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(contradicted) > 0 {
		parts = append(parts, "contradicted: "+strings.Join(contradicted, "; "))
	}
	rationale = strings.Join(parts, "; ")
	return rationale
}

func setSubscore(s *Subscores, kind rulebase.Kind, score float64) {
	switch kind {
	case rulebase.KindWhat:
		s.What = score
	case rulebase.KindWhich:
		s.Which = score
	case rulebase.KindIfThen:
		s.IfThen = score
	case rulebase.KindModality:
		s.Modality = score
	case rulebase.KindGiven:
		s.Given = score
	case rulebase.KindWhy:
		s.Why = score
	}
}
