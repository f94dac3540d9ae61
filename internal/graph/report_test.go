package graph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReport_ChainOrderAndCounters(t *testing.T) {
	g := newTestGraph(t)
	pos, err := Filter1(g.Root(), "positive", func(q int64) bool { return q > 0 }, "q")
	require.NoError(t, err)
	_, err = pos.Derive("dbl", []string{"pt"}, func(vals []any) (any, error) {
		return 2 * vals[0].(float64), nil
	})
	require.NoError(t, err)
	hard, err := Filter1(pos, "hard", func(pt float64) bool { return pt > 50 }, "pt")
	require.NoError(t, err)
	// Anonymous filters stay out of the report.
	anon, err := Filter1(hard, "", func(pt float64) bool { return pt < 90 }, "pt")
	require.NoError(t, err)

	n, err := mustCount(t, anon).Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	stats, err := anon.Report(context.Background())
	require.NoError(t, err)
	want := []FilterStat{
		{Name: "positive", Passed: 5, Total: 10},
		{Name: "hard", Passed: 3, Total: 5},
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

// Report with no prior scan forces one so the counters carry real traffic.
func TestReport_ForcesFirstScan(t *testing.T) {
	g := newTestGraph(t)
	f, err := Filter1(g.Root(), "cut", func(pt float64) bool { return pt > 50 }, "pt")
	require.NoError(t, err)

	stats, err := f.Report(context.Background())
	require.NoError(t, err)
	require.Equal(t, []FilterStat{{Name: "cut", Passed: 5, Total: 10}}, stats)
}

// The forced scan also executes whatever was booked at that moment.
func TestReport_RunsBookedActions(t *testing.T) {
	g := newTestGraph(t)
	f, err := Filter1(g.Root(), "cut", func(pt float64) bool { return pt > 50 }, "pt")
	require.NoError(t, err)
	res := mustCount(t, f)

	_, err = f.Report(context.Background())
	require.NoError(t, err)

	n, err := res.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}

// Counters aggregate across slots.
func TestReport_MultiSlot(t *testing.T) {
	g, err := New(newTestTable(t), WithSlots(4))
	require.NoError(t, err)
	f, err := Filter1(g.Root(), "cut", func(pt float64) bool { return pt > 20 }, "pt")
	require.NoError(t, err)
	stats, err := f.Report(context.Background())
	require.NoError(t, err)
	require.Equal(t, []FilterStat{{Name: "cut", Passed: 8, Total: 10}}, stats)
}
