package rulebase

import "sort"

// Force is the binding force a rule node records: whether the rule's outcome
// is mandatory, left to the court's discretion, or prohibited. The output
// validator checks generated prose against it.
type Force int

const (
	// ForceMandatory means the rule fixes the outcome.
	ForceMandatory Force = iota
	// ForceDiscretionary means the court may allow the outcome.
	ForceDiscretionary
	// ForceProhibited means the outcome must not be claimed.
	ForceProhibited
)

// String returns the lowercase name used in configuration files.
func (f Force) String() (name string) {
	switch f {
	case ForceMandatory:
		name = "mandatory"
	case ForceDiscretionary:
		name = "discretionary"
	case ForceProhibited:
		name = "prohibited"
	default:
		name = "unknown"
	}
	return name
}

// Citation identifies the source rule a node is built from.
type Citation struct {
	// Ref is the canonical reference, e.g. "ORDER_21_APPX1_A1a".
	Ref string
	// Title is a short human-readable description of the source rule.
	Title string
}

// Dimensions holds the six predicate sets of a rule node. A dimension the
// node does not use is simply empty.
type Dimensions struct {
	What     []Predicate
	Which    []Predicate
	IfThen   []Predicate
	Modality []Predicate
	Given    []Predicate
	Why      []Predicate
}

// ByKind returns the predicate set for one dimension.
func (d Dimensions) ByKind(kind Kind) (predicates []Predicate) {
	switch kind {
	case KindWhat:
		predicates = d.What
	case KindWhich:
		predicates = d.Which
	case KindIfThen:
		predicates = d.IfThen
	case KindModality:
		predicates = d.Modality
	case KindGiven:
		predicates = d.Given
	case KindWhy:
		predicates = d.Why
	}
	return predicates
}

// Empty reports whether all six dimensions are empty.
func (d Dimensions) Empty() (empty bool) {
	empty = true
	for _, kind := range Kinds() {
		if len(d.ByKind(kind)) > 0 {
			empty = false
			break
		}
	}
	return empty
}

// Fields returns every field name referenced by any predicate in any
// dimension, deduplicated and sorted.
func (d Dimensions) Fields() (fields []string) {
	seen := map[string]bool{}
	for _, kind := range Kinds() {
		for _, p := range d.ByKind(kind) {
			seen[p.Field] = true
		}
	}
	fields = make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// RuleNode is one pre-built decision-rule unit expressing a legal cost rule
// across six semantic dimensions. Nodes are loaded once at module
// initialization and treated as read-only for the process lifetime.
type RuleNode struct {
	// ID is unique within a registered rule base.
	ID string
	// Dimensions are the node's predicate sets.
	Dimensions Dimensions
	// Citation is the source rule backing this node.
	Citation Citation
	// Force is the binding force the source rule records.
	Force Force
	// Related lists ids of related nodes in the same rule base. These are
	// non-owning references; registration checks they all resolve.
	Related []string
}

// References reports whether any predicate of the node mentions the field.
func (n RuleNode) References(field string) (ok bool) {
	for _, f := range n.Dimensions.Fields() {
		if f == field {
			ok = true
			break
		}
	}
	return ok
}
