package config

import (
	"os"

	"github.com/nikogura/cost-counsel/pkg/costs"
	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Bundle is the on-disk form of one rule base: the rule nodes plus their
// cost schedule, in a single YAML file.
type Bundle struct {
	Nodes    []NodeSpec  `yaml:"nodes"`
	Schedule []EntrySpec `yaml:"schedule"`
}

// NodeSpec is the YAML form of one rule node.
type NodeSpec struct {
	ID         string        `yaml:"id"`
	Citation   CitationSpec  `yaml:"citation"`
	Force      string        `yaml:"force"`
	Related    []string      `yaml:"related,omitempty"`
	Dimensions DimensionSpec `yaml:"dimensions"`
}

// CitationSpec is the YAML form of a citation.
type CitationSpec struct {
	Ref   string `yaml:"ref"`
	Title string `yaml:"title,omitempty"`
}

// DimensionSpec holds the six predicate lists, keyed by dimension name.
type DimensionSpec struct {
	What     []PredicateSpec `yaml:"what,omitempty"`
	Which    []PredicateSpec `yaml:"which,omitempty"`
	IfThen   []PredicateSpec `yaml:"if_then,omitempty"`
	Modality []PredicateSpec `yaml:"modality,omitempty"`
	Given    []PredicateSpec `yaml:"given,omitempty"`
	Why      []PredicateSpec `yaml:"why,omitempty"`
}

// PredicateSpec is the YAML form of one predicate. Op selects which of the
// remaining fields apply.
type PredicateSpec struct {
	Field   string   `yaml:"field"`
	Op      string   `yaml:"op"`
	Value   string   `yaml:"value,omitempty"`
	Options []string `yaml:"options,omitempty"`
	Min     float64  `yaml:"min,omitempty"`
	Max     float64  `yaml:"max,omitempty"`
}

// EntrySpec is the YAML form of one cost schedule entry.
type EntrySpec struct {
	Node     string  `yaml:"node"`
	Fixed    float64 `yaml:"fixed"`
	PerDay   float64 `yaml:"per_day,omitempty"`
	DayField string  `yaml:"day_field,omitempty"`
}

// LoadBundle reads and converts a YAML rule bundle. Structural errors (bad
// op names, bad force names) are reported here; referential errors
// (duplicate ids, dangling related links) are left to store registration,
// which collects them all.
func LoadBundle(path string) (nodes []rulebase.RuleNode, entries []costs.Entry, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read nodes file: %s", path)
		return nodes, entries, err
	}

	var bundle Bundle
	err = yaml.Unmarshal(data, &bundle)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse nodes file: %s", path)
		return nodes, entries, err
	}

	nodes = make([]rulebase.RuleNode, 0, len(bundle.Nodes))
	for _, spec := range bundle.Nodes {
		var node rulebase.RuleNode
		node, err = spec.toNode()
		if err != nil {
			err = errors.Wrapf(err, "node %q in %s", spec.ID, path)
			return nodes, entries, err
		}
		nodes = append(nodes, node)
	}

	entries = make([]costs.Entry, 0, len(bundle.Schedule))
	for _, spec := range bundle.Schedule {
		entries = append(entries, costs.Entry{
			NodeID:   spec.Node,
			Fixed:    spec.Fixed,
			PerDay:   spec.PerDay,
			DayField: spec.DayField,
		})
	}

	return nodes, entries, err
}

func (s NodeSpec) toNode() (node rulebase.RuleNode, err error) {
	var force rulebase.Force
	force, err = parseForce(s.Force)
	if err != nil {
		return node, err
	}

	dims := rulebase.Dimensions{}
	for _, conv := range []struct {
		specs  []PredicateSpec
		target *[]rulebase.Predicate
	}{
		{s.Dimensions.What, &dims.What},
		{s.Dimensions.Which, &dims.Which},
		{s.Dimensions.IfThen, &dims.IfThen},
		{s.Dimensions.Modality, &dims.Modality},
		{s.Dimensions.Given, &dims.Given},
		{s.Dimensions.Why, &dims.Why},
	} {
		for _, ps := range conv.specs {
			var p rulebase.Predicate
			p, err = ps.toPredicate()
			if err != nil {
				return node, err
			}
			*conv.target = append(*conv.target, p)
		}
	}

	node = rulebase.RuleNode{
		ID:         s.ID,
		Dimensions: dims,
		Citation:   rulebase.Citation{Ref: s.Citation.Ref, Title: s.Citation.Title},
		Force:      force,
		Related:    s.Related,
	}
	return node, err
}

func (s PredicateSpec) toPredicate() (p rulebase.Predicate, err error) {
	switch s.Op {
	case "equals":
		p = rulebase.Equals(s.Field, s.Value)
	case "not_equals":
		p = rulebase.NotEquals(s.Field, s.Value)
	case "one_of":
		p = rulebase.OneOf(s.Field, s.Options...)
	case "at_least":
		p = rulebase.AtLeast(s.Field, s.Min)
	case "at_most":
		p = rulebase.AtMost(s.Field, s.Max)
	case "between":
		p = rulebase.Between(s.Field, s.Min, s.Max)
	case "exists":
		p = rulebase.Exists(s.Field)
	default:
		err = errors.Errorf("unknown predicate op %q on field %q", s.Op, s.Field)
	}
	return p, err
}

func parseForce(name string) (force rulebase.Force, err error) {
	switch name {
	case "mandatory", "":
		force = rulebase.ForceMandatory
	case "discretionary":
		force = rulebase.ForceDiscretionary
	case "prohibited":
		force = rulebase.ForceProhibited
	default:
		err = errors.Errorf("unknown force %q", name)
	}
	return force, err
}
