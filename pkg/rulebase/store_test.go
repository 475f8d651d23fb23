package rulebase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNode(id string, related ...string) (node RuleNode) {
	node = RuleNode{
		ID: id,
		Dimensions: Dimensions{
			What: []Predicate{Equals("case_type", "default_judgment")},
		},
		Citation: Citation{Ref: "ORDER_21_APPX1_A1a", Title: "Costs for default judgment"},
		Related:  related,
	}
	return node
}

func TestRegisterSealsStore(t *testing.T) {
	store := NewStore()
	err := store.Register([]RuleNode{testNode("a"), testNode("b")})
	require.NoError(t, err)
	require.True(t, store.Sealed())

	err = store.Register([]RuleNode{testNode("c")})
	require.Error(t, err)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Contains(t, confErr.Error(), "sealed")

	// The failed second registration must not disturb the pool.
	assert.Equal(t, 2, store.Len())
}

func TestRegisterDuplicateIDs(t *testing.T) {
	store := NewStore()
	err := store.Register([]RuleNode{testNode("appx1_a1a"), testNode("appx1_a1a")})
	require.Error(t, err)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Len(t, confErr.Problems, 1)
	assert.Equal(t, "appx1_a1a", confErr.Problems[0].NodeID)
	assert.Contains(t, confErr.Problems[0].Message, "duplicate id")

	assert.False(t, store.Sealed())
	assert.Equal(t, 0, store.Len())
}

func TestRegisterCollectsAllProblems(t *testing.T) {
	empty := RuleNode{ID: "empty", Citation: Citation{Ref: "ORDER_21_R2"}}
	dangling := testNode("dangling", "nowhere")

	store := NewStore()
	err := store.Register([]RuleNode{empty, dangling, testNode("dup"), testNode("dup")})
	require.Error(t, err)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)

	// One problem per violation: empty dimensions, dangling reference,
	// duplicate id. Not fail-fast.
	require.Len(t, confErr.Problems, 3)

	msg := confErr.Error()
	assert.Contains(t, msg, "expresses no dimensions")
	assert.Contains(t, msg, `relates to unknown node "nowhere"`)
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "3 problem(s)")
}

func TestRegisterEmptyID(t *testing.T) {
	store := NewStore()
	err := store.Register([]RuleNode{testNode("")})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "empty id"))
}

func TestRelatedResolveWithinPool(t *testing.T) {
	store := NewStore()
	err := store.Register([]RuleNode{testNode("a", "b"), testNode("b", "a")})
	require.NoError(t, err)

	node, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, node.Related)
}

func TestAllReturnsIDOrder(t *testing.T) {
	store := NewStore()
	err := store.Register([]RuleNode{testNode("zebra"), testNode("alpha"), testNode("mid")})
	require.NoError(t, err)

	var ids []string
	for _, node := range store.All() {
		ids = append(ids, node.ID)
	}
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, ids)
}

func TestCitationsDeduplicated(t *testing.T) {
	a := testNode("a")
	b := testNode("b")
	c := testNode("c")
	c.Citation = Citation{Ref: "ORDER_21_R3"}

	store := NewStore()
	require.NoError(t, store.Register([]RuleNode{a, b, c}))

	assert.Equal(t, []string{"ORDER_21_APPX1_A1a", "ORDER_21_R3"}, store.Citations())
}

func TestGetUnknown(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Register([]RuleNode{testNode("a")}))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}
