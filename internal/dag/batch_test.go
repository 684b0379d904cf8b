package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tariffgraph/internal/value"
)

func buildBatchGraph(t *testing.T) *Graph {
	t.Helper()
	return mustGraph(t,
		&Node{Name: "x", Kind: Input, InputKey: "x", InputDType: value.Decimal},
		&Node{Name: "one", Kind: Constant, ConstantValue: value.NewDecimal(d("1"))},
		&Node{Name: "total", Kind: Add, Inputs: []string{"x", "one"}},
	)
}

func TestBatchOrderPreservation(t *testing.T) {
	eval := NewEvaluator(buildBatchGraph(t), NewTables())
	contexts := []Context{
		{"x": value.NewDecimal(d("1"))},
		{"x": value.NewDecimal(d("2"))},
		{"x": value.NewDecimal(d("3"))},
	}

	results, err := eval.EvaluateBatch(context.Background(), "total", contexts, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, want := range []string{"2", "3", "4"} {
		dec, _ := results[i].Value.Decimal()
		assert.Equal(t, want, dec.String())
	}
}

func TestBatchOrderPreservationParallel(t *testing.T) {
	eval := NewEvaluator(buildBatchGraph(t), NewTables())
	contexts := make([]Context, 20)
	for i := range contexts {
		contexts[i] = Context{"x": value.NewDecimal(d(string(rune('0' + i%9))))}
	}

	results, err := eval.EvaluateBatch(context.Background(), "total", contexts, BatchOptions{Parallelism: 4})
	require.NoError(t, err)

	sequential, err := eval.EvaluateBatch(context.Background(), "total", contexts, BatchOptions{})
	require.NoError(t, err)

	require.Len(t, results, len(contexts))
	for i := range contexts {
		a, _ := results[i].Value.Decimal()
		b, _ := sequential[i].Value.Decimal()
		assert.Equal(t, b.String(), a.String())
	}
}

func TestBatchAbortsOnFirstErrorByDefault(t *testing.T) {
	eval := NewEvaluator(buildBatchGraph(t), NewTables())
	contexts := []Context{
		{"x": value.NewDecimal(d("1"))},
		{"x": value.NewText("not-a-number")},
		{"x": value.NewDecimal(d("3"))},
	}

	_, err := eval.EvaluateBatch(context.Background(), "total", contexts, BatchOptions{})
	require.Error(t, err)
}

func TestBatchErrorIsolation(t *testing.T) {
	eval := NewEvaluator(buildBatchGraph(t), NewTables())
	contexts := []Context{
		{"x": value.NewDecimal(d("1"))},
		{"x": value.NewText("not-a-number")},
		{"x": value.NewDecimal(d("3"))},
	}

	results, err := eval.EvaluateBatch(context.Background(), "total", contexts, BatchOptions{CollectErrors: true})
	require.NoError(t, err)
	require.Len(t, results, 3)

	dec0, _ := results[0].Value.Decimal()
	assert.Equal(t, "2", dec0.String())
	require.Error(t, results[1].Err)
	assert.True(t, results[1].Value.IsAbsent())

	dec2, _ := results[2].Value.Decimal()
	assert.Equal(t, "4", dec2.String())
}
