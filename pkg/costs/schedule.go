// Package costs is a schedule-based reference calculator. It implements
// only the contract the advisory core relies on: given a chosen match and
// the case facts, produce a computed value plus the protected fields and
// citations that justify it. Real deployments substitute their own
// jurisdiction-specific calculator behind the same interface.
package costs

import (
	"context"
	"fmt"

	"github.com/nikogura/cost-counsel/pkg/guard"
	"github.com/nikogura/cost-counsel/pkg/matching"
	"github.com/nikogura/cost-counsel/pkg/rulebase"
	"github.com/pkg/errors"
)

// Entry is the scheduled cost for one rule node: a fixed amount, optionally
// plus a per-day rate over the fact named by DayField.
type Entry struct {
	NodeID   string
	Fixed    float64
	PerDay   float64
	DayField string
}

// Schedule maps rule nodes to scheduled costs.
type Schedule struct {
	store   *rulebase.Store
	entries map[string]Entry
}

// NewSchedule builds a schedule over a sealed store. Every entry must name
// a registered node.
func NewSchedule(store *rulebase.Store, entries []Entry) (schedule *Schedule, err error) {
	if store == nil || !store.Sealed() {
		err = errors.New("cost schedule requires a sealed rule store")
		return schedule, err
	}

	byNode := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if _, ok := store.Get(entry.NodeID); !ok {
			err = errors.Errorf("schedule entry for unknown node %q", entry.NodeID)
			return schedule, err
		}
		if _, dup := byNode[entry.NodeID]; dup {
			err = errors.Errorf("duplicate schedule entry for node %q", entry.NodeID)
			return schedule, err
		}
		byNode[entry.NodeID] = entry
	}

	schedule = &Schedule{store: store, entries: byNode}
	return schedule, err
}

// Calculate produces the ground truth for a matched node: the scheduled
// total, the protected fields behind it, and the node's citation. The
// protected-field set is explicit so the validator knows exactly what
// generated text may never alter.
func (s *Schedule) Calculate(_ context.Context, match matching.MatchResult, facts rulebase.FactSet) (gt guard.GroundTruth, err error) {
	entry, ok := s.entries[match.NodeID]
	if !ok {
		err = errors.Errorf("no schedule entry for node %q", match.NodeID)
		return gt, err
	}

	node, ok := s.store.Get(match.NodeID)
	if !ok {
		err = errors.Errorf("node %q vanished from a sealed store", match.NodeID)
		return gt, err
	}

	total := entry.Fixed
	fields := []guard.ProtectedField{}

	if entry.PerDay != 0 && entry.DayField != "" {
		days, known := facts.Number(entry.DayField)
		if !known {
			err = errors.Errorf("schedule for node %q needs numeric fact %q", match.NodeID, entry.DayField)
			return gt, err
		}
		total += entry.PerDay * days
		fields = append(fields, guard.ProtectedField{Name: entry.DayField, Kind: guard.KindCount, Number: days})
	}

	fields = append(fields, guard.ProtectedField{Name: "total", Kind: guard.KindAmount, Number: total})
	fields = append(fields, categoryFields(node, facts)...)

	gt = guard.GroundTruth{
		Fields:    fields,
		Citations: []string{node.Citation.Ref},
		Force:     node.Force.String(),
	}
	return gt, err
}

// categoryFields protects the textual facts the matched node's one-of
// predicates constrain, carrying the predicate's options as the enumerated
// variants.
func categoryFields(node *rulebase.RuleNode, facts rulebase.FactSet) (fields []guard.ProtectedField) {
	for _, kind := range rulebase.Kinds() {
		for _, p := range node.Dimensions.ByKind(kind) {
			if p.Op != rulebase.OpOneOf {
				continue
			}
			text, ok := facts.Text(p.Field)
			if !ok {
				continue
			}
			fields = append(fields, guard.ProtectedField{
				Name:     p.Field,
				Kind:     guard.KindCategory,
				Text:     text,
				Variants: p.Options,
			})
		}
	}
	return fields
}

// Describe returns a one-line summary of the entry for a node, for logs and
// the CLI.
func (s *Schedule) Describe(nodeID string) (description string, ok bool) {
	entry, ok := s.entries[nodeID]
	if !ok {
		return description, ok
	}
	if entry.PerDay != 0 {
		description = fmt.Sprintf("$%.2f + $%.2f per %s", entry.Fixed, entry.PerDay, entry.DayField)
	} else {
		description = fmt.Sprintf("$%.2f fixed", entry.Fixed)
	}
	return description, ok
}
