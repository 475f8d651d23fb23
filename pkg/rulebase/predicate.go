package rulebase

import (
	"fmt"
	"strings"
)

// Kind identifies one of the six semantic dimensions a rule node expresses.
type Kind int

// The six dimensions, in canonical order.
const (
	KindWhat Kind = iota
	KindWhich
	KindIfThen
	KindModality
	KindGiven
	KindWhy
)

// Kinds returns all six dimension kinds in canonical order.
func Kinds() (kinds []Kind) {
	kinds = []Kind{KindWhat, KindWhich, KindIfThen, KindModality, KindGiven, KindWhy}
	return kinds
}

// String returns the canonical dimension name.
func (k Kind) String() (name string) {
	switch k {
	case KindWhat:
		name = "WHAT"
	case KindWhich:
		name = "WHICH"
	case KindIfThen:
		name = "IF_THEN"
	case KindModality:
		name = "MODALITY"
	case KindGiven:
		name = "GIVEN"
	case KindWhy:
		name = "WHY"
	default:
		name = "UNKNOWN"
	}
	return name
}

// Satisfaction is the outcome of evaluating one predicate against a FactSet.
type Satisfaction int

const (
	// SatisfactionMissing means the referenced fact is not known yet.
	SatisfactionMissing Satisfaction = iota
	// SatisfactionSatisfied means the fact is known and the predicate holds.
	SatisfactionSatisfied
	// SatisfactionContradicted means the fact is known and the predicate fails.
	SatisfactionContradicted
)

// Op selects the comparison a predicate performs. The set is closed; Eval
// switches over every variant.
type Op int

const (
	// OpEquals requires a textual fact to equal Text exactly.
	OpEquals Op = iota
	// OpNotEquals requires a textual fact to differ from Text.
	OpNotEquals
	// OpOneOf requires a textual fact to be one of Options.
	OpOneOf
	// OpAtLeast requires a numeric fact >= Min.
	OpAtLeast
	// OpAtMost requires a numeric fact <= Max.
	OpAtMost
	// OpBetween requires a numeric fact in [Min, Max].
	OpBetween
	// OpExists requires the fact to be present, whatever its value.
	OpExists
)

// Predicate is one condition a rule node places on the case facts. It is a
// tagged variant: Op selects which comparison fields apply.
type Predicate struct {
	Field   string
	Op      Op
	Text    string
	Options []string
	Min     float64
	Max     float64
}

// Equals builds a predicate requiring field == value.
func Equals(field, value string) (p Predicate) {
	p = Predicate{Field: field, Op: OpEquals, Text: value}
	return p
}

// NotEquals builds a predicate requiring field != value.
func NotEquals(field, value string) (p Predicate) {
	p = Predicate{Field: field, Op: OpNotEquals, Text: value}
	return p
}

// OneOf builds a predicate requiring the field to be one of the options.
func OneOf(field string, options ...string) (p Predicate) {
	p = Predicate{Field: field, Op: OpOneOf, Options: options}
	return p
}

// AtLeast builds a predicate requiring a numeric field >= min.
func AtLeast(field string, min float64) (p Predicate) {
	p = Predicate{Field: field, Op: OpAtLeast, Min: min}
	return p
}

// AtMost builds a predicate requiring a numeric field <= max.
func AtMost(field string, max float64) (p Predicate) {
	p = Predicate{Field: field, Op: OpAtMost, Max: max}
	return p
}

// Between builds a predicate requiring a numeric field in [min, max].
func Between(field string, min, max float64) (p Predicate) {
	p = Predicate{Field: field, Op: OpBetween, Min: min, Max: max}
	return p
}

// Exists builds a predicate requiring the field to be known.
func Exists(field string) (p Predicate) {
	p = Predicate{Field: field, Op: OpExists}
	return p
}

// Eval evaluates the predicate against the facts. A predicate whose field
// is unknown is missing, never contradicted; a known fact that fails the
// comparison (including a type mismatch) is contradicted.
func (p Predicate) Eval(facts FactSet) (result Satisfaction) {
	if !facts.Has(p.Field) {
		result = SatisfactionMissing
		return result
	}

	switch p.Op {
	case OpExists:
		result = SatisfactionSatisfied
	case OpEquals:
		text, ok := facts.Text(p.Field)
		result = boolSatisfaction(ok && strings.TrimSpace(text) == p.Text)
	case OpNotEquals:
		text, ok := facts.Text(p.Field)
		result = boolSatisfaction(ok && strings.TrimSpace(text) != p.Text)
	case OpOneOf:
		text, ok := facts.Text(p.Field)
		matched := false
		if ok {
			trimmed := strings.TrimSpace(text)
			for _, option := range p.Options {
				if trimmed == option {
					matched = true
					break
				}
			}
		}
		result = boolSatisfaction(matched)
	case OpAtLeast:
		number, ok := facts.Number(p.Field)
		result = boolSatisfaction(ok && number >= p.Min)
	case OpAtMost:
		number, ok := facts.Number(p.Field)
		result = boolSatisfaction(ok && number <= p.Max)
	case OpBetween:
		number, ok := facts.Number(p.Field)
		result = boolSatisfaction(ok && number >= p.Min && number <= p.Max)
	default:
		result = SatisfactionContradicted
	}

	return result
}

func boolSatisfaction(ok bool) (result Satisfaction) {
	if ok {
		result = SatisfactionSatisfied
		return result
	}
	result = SatisfactionContradicted
	return result
}

// Describe returns a short human-readable form of the predicate, used in
// match rationales and gap reports.
func (p Predicate) Describe() (description string) {
	switch p.Op {
	case OpEquals:
		description = fmt.Sprintf("%s = %q", p.Field, p.Text)
	case OpNotEquals:
		description = fmt.Sprintf("%s != %q", p.Field, p.Text)
	case OpOneOf:
		description = fmt.Sprintf("%s in {%s}", p.Field, strings.Join(p.Options, ", "))
	case OpAtLeast:
		description = fmt.Sprintf("%s >= %g", p.Field, p.Min)
	case OpAtMost:
		description = fmt.Sprintf("%s <= %g", p.Field, p.Max)
	case OpBetween:
		description = fmt.Sprintf("%s in [%g, %g]", p.Field, p.Min, p.Max)
	case OpExists:
		description = fmt.Sprintf("%s is known", p.Field)
	default:
		description = p.Field
	}
	return description
}
