package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tariffgraph/internal/decimal"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

func TestGraphDuplicateNameRejected(t *testing.T) {
	g := NewGraph("motor", "v1", "EUR", nil)
	require.NoError(t, g.AddNode(&Node{Name: "base", Kind: Constant, ConstantValue: value.NewDecimal(decimal.NewFromInt(1))}))

	err := g.AddNode(&Node{Name: "base", Kind: Constant, ConstantValue: value.NewDecimal(decimal.NewFromInt(2))})
	require.Error(t, err)
}

func TestGraphValidateCatchesUnresolvedReference(t *testing.T) {
	g := NewGraph("motor", "v1", "EUR", nil)
	require.NoError(t, g.AddNode(&Node{Name: "total", Kind: Add, Inputs: []string{"missing"}}))

	err := g.Validate()
	require.Error(t, err)
}

func TestGraphValidateCatchesCycle(t *testing.T) {
	g := NewGraph("motor", "v1", "EUR", nil)
	require.NoError(t, g.AddNode(&Node{Name: "a", Kind: Add, Inputs: []string{"b"}}))
	require.NoError(t, g.AddNode(&Node{Name: "b", Kind: Add, Inputs: []string{"a"}}))

	err := g.Validate()
	require.Error(t, err)
}

func TestGraphValidateAcceptsDAG(t *testing.T) {
	g := NewGraph("motor", "v1", "EUR", nil)
	require.NoError(t, g.AddNode(&Node{Name: "base", Kind: Constant, ConstantValue: value.NewDecimal(decimal.NewFromInt(500))}))
	require.NoError(t, g.AddNode(&Node{Name: "fee", Kind: Constant, ConstantValue: value.NewDecimal(decimal.NewFromInt(25))}))
	require.NoError(t, g.AddNode(&Node{Name: "total", Kind: Add, Inputs: []string{"base", "fee"}}))

	require.NoError(t, g.Validate())
	assert.Equal(t, 3, g.Len())
}

func TestGraphNodesPreservesInsertionOrder(t *testing.T) {
	g := NewGraph("motor", "v1", "EUR", nil)
	require.NoError(t, g.AddNode(&Node{Name: "c", Kind: Constant}))
	require.NoError(t, g.AddNode(&Node{Name: "a", Kind: Constant}))
	require.NoError(t, g.AddNode(&Node{Name: "b", Kind: Constant}))

	var names []string
	for _, n := range g.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}
