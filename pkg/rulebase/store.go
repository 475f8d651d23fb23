package rulebase

import (
	"fmt"
	"sort"
	"strings"
)

// Problem is one violation found while registering a rule base.
type Problem struct {
	NodeID  string
	Message string
}

// ConfigurationError reports every violation found during registration, not
// just the first, so a caller can fix the whole bundle in one pass.
type ConfigurationError struct {
	Problems []Problem
}

// Error formats all problems, one per line.
func (e *ConfigurationError) Error() (msg string) {
	lines := make([]string, 0, len(e.Problems)+1)
	lines = append(lines, fmt.Sprintf("rule base configuration invalid: %d problem(s)", len(e.Problems)))
	for _, p := range e.Problems {
		if p.NodeID != "" {
			lines = append(lines, fmt.Sprintf("  node %q: %s", p.NodeID, p.Message))
		} else {
			lines = append(lines, "  "+p.Message)
		}
	}
	msg = strings.Join(lines, "\n")
	return msg
}

// Store holds the immutable, validated pool of rule nodes for one domain
// module. Registration is a one-time single-threaded initialization step;
// once it succeeds the store is sealed and safe for unlimited concurrent
// readers without locking.
type Store struct {
	nodes  map[string]*RuleNode
	ids    []string
	sealed bool
}

// NewStore creates an empty, unsealed store.
func NewStore() (store *Store) {
	store = &Store{nodes: map[string]*RuleNode{}}
	return store
}

// Register validates and installs the node pool. It checks id uniqueness,
// that every node expresses at least one dimension, and that every related
// id resolves to a node in the same pool. All violations are collected
// before failing. On success the store is sealed; further Register calls
// are rejected. On failure the store is left unchanged.
func (s *Store) Register(nodes []RuleNode) (err error) {
	if s.sealed {
		err = &ConfigurationError{Problems: []Problem{{Message: "store is sealed; rule nodes register exactly once"}}}
		return err
	}

	var problems []Problem

	byID := make(map[string]*RuleNode, len(nodes))
	firstIndex := map[string]int{}
	for i := range nodes {
		node := nodes[i]
		if node.ID == "" {
			problems = append(problems, Problem{Message: fmt.Sprintf("node at index %d has an empty id", i)})
			continue
		}
		if prior, dup := firstIndex[node.ID]; dup {
			problems = append(problems, Problem{
				NodeID:  node.ID,
				Message: fmt.Sprintf("duplicate id: registered at index %d and again at index %d", prior, i),
			})
			continue
		}
		firstIndex[node.ID] = i
		copied := node
		byID[node.ID] = &copied
	}

	for i := range nodes {
		node := nodes[i]
		if node.ID == "" {
			continue
		}
		if node.Dimensions.Empty() {
			problems = append(problems, Problem{NodeID: node.ID, Message: "expresses no dimensions"})
		}
		for _, related := range node.Related {
			if _, ok := byID[related]; !ok {
				problems = append(problems, Problem{
					NodeID:  node.ID,
					Message: fmt.Sprintf("relates to unknown node %q", related),
				})
			}
		}
	}

	if len(problems) > 0 {
		err = &ConfigurationError{Problems: problems}
		return err
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s.nodes = byID
	s.ids = ids
	s.sealed = true

	return err
}

// Sealed reports whether registration has succeeded.
func (s *Store) Sealed() (sealed bool) {
	sealed = s.sealed
	return sealed
}

// Get returns the node with the given id. O(1); never fails after sealing.
func (s *Store) Get(id string) (node *RuleNode, ok bool) {
	node, ok = s.nodes[id]
	return node, ok
}

// Len returns the number of registered nodes.
func (s *Store) Len() (n int) {
	n = len(s.ids)
	return n
}

// All returns the registered nodes in ascending id order. The returned
// slice is freshly allocated; the nodes themselves are shared and must be
// treated as read-only.
func (s *Store) All() (nodes []*RuleNode) {
	nodes = make([]*RuleNode, 0, len(s.ids))
	for _, id := range s.ids {
		nodes = append(nodes, s.nodes[id])
	}
	return nodes
}

// Citations returns every citation ref in the store, deduplicated and
// sorted. The output validator uses this as its known-citation registry.
func (s *Store) Citations() (refs []string) {
	seen := map[string]bool{}
	for _, id := range s.ids {
		ref := s.nodes[id].Citation.Ref
		if ref != "" && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}
