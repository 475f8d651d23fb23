// Package guard defends a deterministically computed result from corruption
// by free-form generated text. The boundary is one-way: generated text is
// checked against the ground truth, and nothing in this package (or its
// callers) can feed text back into the ground truth. Validation is a pure,
// stateless, synchronous classification; it never corrects the text.
package guard

import (
	"strconv"
)

// ValueKind classifies a protected field.
type ValueKind int

const (
	// KindAmount is a monetary amount checked against currency tokens.
	KindAmount ValueKind = iota
	// KindCount is an integer quantity checked next to the field's words.
	KindCount
	// KindCategory is an enumerated value checked against its variants.
	KindCategory
)

// ProtectedField is one field of a computed result that generated text must
// never alter.
type ProtectedField struct {
	Name string
	Kind ValueKind
	// Number holds the value for KindAmount and KindCount.
	Number float64
	// Text holds the value for KindCategory.
	Text string
	// Variants enumerates the other values of the category; text asserting
	// one of them instead of Text is a mismatch.
	Variants []string
}

// GroundTruth is the output contract of the domain calculator: a computed
// result, the explicit set of protected fields that must never change, and
// the citations that justify it. Treat as read-only outside the calculator.
type GroundTruth struct {
	Fields    []ProtectedField
	Citations []string
	// Force is the binding force recorded on the node(s) backing the
	// result; the terminology check compares generated modal language
	// against it. Stored as the lowercase name ("mandatory",
	// "discretionary", "prohibited").
	Force string
}

// Amount returns the named amount field's value.
func (g GroundTruth) Amount(name string) (value float64, ok bool) {
	for _, field := range g.Fields {
		if field.Name == name && field.Kind == KindAmount {
			value = field.Number
			ok = true
			break
		}
	}
	return value, ok
}

func formatAmount(value float64) (formatted string) {
	formatted = strconv.FormatFloat(value, 'f', 2, 64)
	return formatted
}
