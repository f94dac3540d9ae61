package actions

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/colgraph/colgraph/internal/graph"
	"github.com/colgraph/colgraph/internal/source"
)

func newFixture(t *testing.T, opts ...graph.Option) *graph.Graph {
	t.Helper()
	tab := source.NewTable()
	require.NoError(t, source.AddColumn(tab, "x", []float64{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, source.AddColumn(tab, "n", []int64{8, 7, 6, 5, 4, 3, 2, 1}))
	g, err := graph.New(tab, opts...)
	require.NoError(t, err)
	return g
}

func TestBuiltinPayloads(t *testing.T) {
	ctx := context.Background()
	g := newFixture(t)
	f, err := graph.Filter1(g.Root(), "big", func(x float64) bool { return x > 2 }, "x")
	require.NoError(t, err)

	count, err := Count(f)
	require.NoError(t, err)
	sum, err := Sum[float64](f, "x")
	require.NoError(t, err)
	mean, err := Mean(f, "x")
	require.NoError(t, err)
	min, err := Min[int64](f, "n")
	require.NoError(t, err)
	max, err := Max[int64](f, "n")
	require.NoError(t, err)
	take, err := Take[float64](f, "x")
	require.NoError(t, err)
	prod, err := Reduce(f, func(a, b float64) float64 { return a * b }, 1, "x")
	require.NoError(t, err)

	t.Run("Count", func(t *testing.T) {
		n, err := count.Value(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(6), n)
	})
	t.Run("Sum", func(t *testing.T) {
		s, err := sum.Value(ctx)
		require.NoError(t, err)
		require.Equal(t, float64(3+4+5+6+7+8), s)
	})
	t.Run("Mean", func(t *testing.T) {
		m, err := mean.Value(ctx)
		require.NoError(t, err)
		require.InDelta(t, 5.5, m, 1e-12)
	})
	t.Run("Min and max", func(t *testing.T) {
		lo, err := min.Value(ctx)
		require.NoError(t, err)
		hi, err := max.Value(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(1), lo)
		require.Equal(t, int64(6), hi)
	})
	t.Run("Take preserves source order single-slot", func(t *testing.T) {
		vals, err := take.Value(ctx)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{3, 4, 5, 6, 7, 8}, vals); diff != "" {
			t.Fatalf("take mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("Reduce", func(t *testing.T) {
		p, err := prod.Value(ctx)
		require.NoError(t, err)
		require.Equal(t, float64(3*4*5*6*7*8), p)
	})
}

func TestPayloads_SlotMergeEquivalence(t *testing.T) {
	ctx := context.Background()
	run := func(t *testing.T, slots int) (int64, float64, float64, []float64) {
		g := newFixture(t, graph.WithSlots(slots))
		count, err := Count(g.Root())
		require.NoError(t, err)
		sum, err := Sum[float64](g.Root(), "x")
		require.NoError(t, err)
		mean, err := Mean(g.Root(), "x")
		require.NoError(t, err)
		take, err := Take[float64](g.Root(), "x")
		require.NoError(t, err)
		n, err := count.Value(ctx)
		require.NoError(t, err)
		s, err := sum.Value(ctx)
		require.NoError(t, err)
		m, err := mean.Value(ctx)
		require.NoError(t, err)
		vs, err := take.Value(ctx)
		require.NoError(t, err)
		sort.Float64s(vs)
		return n, s, m, vs
	}

	n1, s1, m1, v1 := run(t, 1)
	n4, s4, m4, v4 := run(t, 4)
	require.Equal(t, n1, n4)
	require.Equal(t, s1, s4)
	require.InDelta(t, m1, m4, 1e-12)
	if diff := cmp.Diff(v1, v4); diff != "" {
		t.Fatalf("take mismatch across slot counts (-want +got):\n%s", diff)
	}
}

func TestPayloads_TypeMismatch(t *testing.T) {
	g := newFixture(t)
	sum, err := Sum[int64](g.Root(), "x") // x is float64
	require.NoError(t, err)
	_, err = sum.Value(context.Background())
	var ee *graph.EntryError
	require.ErrorAs(t, err, &ee)
}

func TestMean_Empty(t *testing.T) {
	g := newFixture(t)
	none, err := graph.Filter1(g.Root(), "none", func(x float64) bool { return false }, "x")
	require.NoError(t, err)
	m, err := Mean(none, "x")
	require.NoError(t, err)
	v, err := m.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(0), v)
}
