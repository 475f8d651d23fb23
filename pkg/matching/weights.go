package matching

import (
	"math"

	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
)

// WeightTolerance is how far the weight sum may drift from 1.0 before the
// configuration is rejected.
const WeightTolerance = 1e-6

// Weights defines the relative importance of each dimension when combining
// dimension scores into an overall confidence. All six weights must sum to
// 1.0 within WeightTolerance and none may be negative. A malformed weight
// set is a configuration error caught at engine construction, never at
// match time.
type Weights struct {
	What     float64
	Which    float64
	IfThen   float64
	Modality float64
	Given    float64
	Why      float64
}

// DefaultWeights returns the module's standard weight distribution.
func DefaultWeights() (w Weights) {
	w = Weights{
		What:     0.25,
		Which:    0.20,
		IfThen:   0.25,
		Modality: 0.15,
		Given:    0.10,
		Why:      0.05,
	}
	return w
}

// ForKind returns the weight for one dimension.
func (w Weights) ForKind(kind rulebase.Kind) (weight float64) {
	switch kind {
	case rulebase.KindWhat:
		weight = w.What
	case rulebase.KindWhich:
		weight = w.Which
	case rulebase.KindIfThen:
		weight = w.IfThen
	case rulebase.KindModality:
		weight = w.Modality
	case rulebase.KindGiven:
		weight = w.Given
	case rulebase.KindWhy:
		weight = w.Why
	}
	return weight
}

// Sum returns the total of all six weights.
func (w Weights) Sum() (sum float64) {
	sum = w.What + w.Which + w.IfThen + w.Modality + w.Given + w.Why
	return sum
}

// Validate checks that the weights sum to 1.0 and that none are negative.
func (w Weights) Validate() (err error) {
	if math.Abs(w.Sum()-1.0) > WeightTolerance {
		err = errors.Errorf("dimension weights sum to %.7f, must sum to 1.0", w.Sum())
		return err
	}
	for _, kind := range rulebase.Kinds() {
		if w.ForKind(kind) < 0 {
			err = errors.Errorf("dimension weight %s is negative: %g", kind, w.ForKind(kind))
			return err
		}
	}
	return err
}
