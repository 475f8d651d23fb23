package rulebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateEval(t *testing.T) {
	facts := NewFactSet(map[string]interface{}{
		"court_level":  "High Court",
		"case_type":    "default_judgment",
		"claim_amount": 50000,
		"trial_days":   "3",
	})

	tests := []struct {
		name string
		pred Predicate
		want Satisfaction
	}{
		{"equals satisfied", Equals("case_type", "default_judgment"), SatisfactionSatisfied},
		{"equals contradicted", Equals("case_type", "assessment"), SatisfactionContradicted},
		{"equals missing", Equals("judgment_date", "2024-01-01"), SatisfactionMissing},
		{"not equals satisfied", NotEquals("court_level", "District Court"), SatisfactionSatisfied},
		{"not equals contradicted", NotEquals("court_level", "High Court"), SatisfactionContradicted},
		{"one of satisfied", OneOf("court_level", "High Court", "Court of Appeal"), SatisfactionSatisfied},
		{"one of contradicted", OneOf("court_level", "District Court", "Magistrates' Court"), SatisfactionContradicted},
		{"at least satisfied", AtLeast("claim_amount", 20000), SatisfactionSatisfied},
		{"at least boundary", AtLeast("claim_amount", 50000), SatisfactionSatisfied},
		{"at least contradicted", AtLeast("claim_amount", 60000), SatisfactionContradicted},
		{"at most satisfied", AtMost("claim_amount", 60000), SatisfactionSatisfied},
		{"at most contradicted", AtMost("claim_amount", 20000), SatisfactionContradicted},
		{"between satisfied", Between("claim_amount", 20000, 60000), SatisfactionSatisfied},
		{"between contradicted", Between("claim_amount", 60000, 100000), SatisfactionContradicted},
		{"between missing", Between("counterclaim_amount", 0, 100), SatisfactionMissing},
		{"exists satisfied", Exists("court_level"), SatisfactionSatisfied},
		{"exists missing", Exists("hearing_date"), SatisfactionMissing},
		{"numeric string coerces", AtLeast("trial_days", 2), SatisfactionSatisfied},
		{"type mismatch contradicts", AtLeast("court_level", 1), SatisfactionContradicted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Eval(facts))
		})
	}
}

func TestPredicateDescribe(t *testing.T) {
	assert.Equal(t, `case_type = "default_judgment"`, Equals("case_type", "default_judgment").Describe())
	assert.Equal(t, "claim_amount >= 20000", AtLeast("claim_amount", 20000).Describe())
	assert.Equal(t, "trial_days is known", Exists("trial_days").Describe())
	assert.Equal(t, "court_level in {High Court, Court of Appeal}", OneOf("court_level", "High Court", "Court of Appeal").Describe())
}

func TestFactSetImmutable(t *testing.T) {
	source := map[string]interface{}{"a": "1"}
	facts := NewFactSet(source)

	// Mutating the source map must not leak into the FactSet.
	source["b"] = "2"
	assert.False(t, facts.Has("b"))

	// With returns a copy; the original is unchanged.
	extended := facts.With("c", 3.0)
	assert.True(t, extended.Has("c"))
	assert.False(t, facts.Has("c"))
	assert.Equal(t, 1, facts.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestFactSetAccessors(t *testing.T) {
	facts := NewFactSet(map[string]interface{}{
		"claim_amount": 50000,
		"court_level":  "High Court",
	})

	number, ok := facts.Number("claim_amount")
	assert.True(t, ok)
	assert.InDelta(t, 50000, number, 1e-9)

	text, ok := facts.Text("court_level")
	assert.True(t, ok)
	assert.Equal(t, "High Court", text)

	_, ok = facts.Number("court_level")
	assert.False(t, ok)

	assert.Equal(t, []string{"claim_amount", "court_level"}, facts.Fields())
}

func TestDimensionsFields(t *testing.T) {
	dims := Dimensions{
		What:   []Predicate{Equals("case_type", "default_judgment")},
		Which:  []Predicate{OneOf("court_level", "High Court")},
		IfThen: []Predicate{AtLeast("claim_amount", 20000), Exists("case_type")},
	}

	assert.Equal(t, []string{"case_type", "claim_amount", "court_level"}, dims.Fields())
	assert.False(t, dims.Empty())
	assert.True(t, Dimensions{}.Empty())
}
