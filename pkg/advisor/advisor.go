// Package advisor drives one advisory request end to end: match the facts,
// report gaps, have the external calculator produce the ground truth, then
// run the generate-validate loop until the text passes or the retry budget
// is exhausted. Text that fails validation is discarded; it can never reach
// the caller and never feeds back into the ground truth.
package advisor

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikogura/cost-counsel/pkg/gaps"
	"github.com/nikogura/cost-counsel/pkg/guard"
	"github.com/nikogura/cost-counsel/pkg/matching"
	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Calculator is the external domain calculator. Only its output contract
// matters here: a computed value plus its protected fields and citations.
type Calculator interface {
	Calculate(ctx context.Context, match matching.MatchResult, facts rulebase.FactSet) (gt guard.GroundTruth, err error)
}

// ExplainRequest is everything a generator may see. The ground truth is a
// value copy; generated text is validated against the original.
type ExplainRequest struct {
	GroundTruth guard.GroundTruth
	Facts       rulebase.FactSet
	NodeID      string
	// Violations from the previous attempt, so a generator can avoid
	// repeating them. Empty on the first attempt.
	Violations []guard.Violation
}

// Generator is the external text-generation service.
type Generator interface {
	Explain(ctx context.Context, req ExplainRequest) (text string, err error)
}

// Advice is the outcome of one request.
type Advice struct {
	RequestID string `json:"request_id"`
	// NeedsInformation is set when the facts are not complete enough to
	// calculate; Gaps then says what to ask for.
	NeedsInformation bool                   `json:"needs_information"`
	Gaps             gaps.GapReport         `json:"gaps"`
	Matches          []matching.MatchResult `json:"matches"`
	GroundTruth      guard.GroundTruth      `json:"ground_truth,omitempty"`
	Explanation      string                 `json:"explanation,omitempty"`
	// Fallback is set when the explanation is the deterministic rendering
	// of the ground truth rather than generated prose.
	Fallback bool                    `json:"fallback,omitempty"`
	Outcome  guard.ValidationOutcome `json:"validation,omitempty"`
}

// Advisor wires the matching engine, gap evaluator, calculator, generator,
// and validator for one module. Nil generator means every answer uses the
// deterministic fallback.
type Advisor struct {
	engine      *matching.Engine
	evaluator   *gaps.Evaluator
	calculator  Calculator
	generator   Generator
	validator   *guard.Validator
	logger      *zap.Logger
	maxAttempts int
}

// New builds an advisor. maxAttempts is the per-request generation budget;
// values below 1 are treated as 1 when a generator is configured.
func New(engine *matching.Engine, evaluator *gaps.Evaluator, calculator Calculator,
	generator Generator, validator *guard.Validator, logger *zap.Logger, maxAttempts int) (advisor *Advisor, err error) {

	if engine == nil || evaluator == nil || calculator == nil || validator == nil {
		err = errors.New("advisor requires an engine, evaluator, calculator, and validator")
		return advisor, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	advisor = &Advisor{
		engine:      engine,
		evaluator:   evaluator,
		calculator:  calculator,
		generator:   generator,
		validator:   validator,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
	return advisor, err
}

// Advise runs one request. It fails closed: the only ways out are a gap
// report asking for more information, an explanation that explicitly passed
// validation, or the deterministic fallback rendering of the ground truth.
func (a *Advisor) Advise(ctx context.Context, facts rulebase.FactSet) (advice Advice, err error) {
	advice.RequestID = uuid.NewString()
	logger := a.logger.With(zap.String("request_id", advice.RequestID))

	advice.Matches = a.engine.Match(facts)
	advice.Gaps = a.evaluator.Compute(advice.Matches, facts)

	logger.Debug("matched rule nodes",
		zap.Int("matches", len(advice.Matches)),
		zap.Bool("complete", advice.Gaps.Complete),
		zap.Float64("completeness", advice.Gaps.Completeness))

	if !advice.Gaps.Complete {
		advice.NeedsInformation = true
		return advice, err
	}

	top := advice.Matches[0]
	advice.GroundTruth, err = a.calculator.Calculate(ctx, top, facts)
	if err != nil {
		err = errors.Wrapf(err, "calculator failed for node %s", top.NodeID)
		return advice, err
	}

	advice.Explanation, advice.Fallback, advice.Outcome = a.explain(ctx, logger, top, facts, advice.GroundTruth)
	return advice, err
}

// explain runs the generate-validate loop. Any generator error or failed
// validation spends one attempt; once the budget is exhausted the answer is
// the fallback rendering, passed back with the last outcome and the
// exhausted flag set.
func (a *Advisor) explain(ctx context.Context, logger *zap.Logger, top matching.MatchResult,
	facts rulebase.FactSet, gt guard.GroundTruth) (explanation string, fallback bool, outcome guard.ValidationOutcome) {

	if a.generator == nil {
		explanation = guard.RenderFallback(gt)
		fallback = true
		outcome = a.validator.Validate(gt, explanation, gt.Citations)
		return explanation, fallback, outcome
	}

	budget := guard.NewRetryBudget(a.maxAttempts)
	var violations []guard.Violation

	for budget.Spend() {
		text, genErr := a.generator.Explain(ctx, ExplainRequest{
			GroundTruth: gt,
			Facts:       facts,
			NodeID:      top.NodeID,
			Violations:  violations,
		})
		if genErr != nil {
			logger.Warn("generator failed", zap.Error(genErr), zap.Int("remaining", budget.Remaining()))
			continue
		}

		outcome = a.validator.Validate(gt, text, gt.Citations)
		if outcome.Passed {
			explanation = text
			return explanation, fallback, outcome
		}

		violations = outcome.Violations
		logger.Warn("generated text failed validation",
			zap.Int("violations", len(outcome.Violations)),
			zap.Int("remaining", budget.Remaining()))
	}

	outcome.Passed = false
	outcome.Exhausted = true
	explanation = guard.RenderFallback(gt)
	fallback = true

	logger.Info("retry budget exhausted, presenting ground truth without generated prose")
	return explanation, fallback, outcome
}
