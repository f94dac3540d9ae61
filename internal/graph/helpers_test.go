package graph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/colgraph/colgraph/internal/source"
	"github.com/stretchr/testify/require"
)

var errTest = errors.New("test fault")

// newTestTable builds the fixture shared by the engine tests: ten entries
// with a float64 "pt", an int64 "q", and a string "tag".
func newTestTable(t *testing.T) *source.Table {
	t.Helper()
	tab := source.NewTable()
	require.NoError(t, source.AddColumn(tab, "pt", []float64{5, 15, 25, 35, 45, 55, 65, 75, 85, 95}))
	require.NoError(t, source.AddColumn(tab, "q", []int64{-1, 1, -1, 1, -1, 1, -1, 1, -1, 1}))
	require.NoError(t, source.AddColumn(tab, "tag", []string{"a", "b", "a", "b", "a", "b", "a", "b", "a", "b"}))
	return tab
}

func newTestGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g, err := New(newTestTable(t), opts...)
	require.NoError(t, err)
	return g
}

// countPayload / collectPayload are minimal local payloads; the real ones
// live in the actions package, which sits above this one.

type countPayload struct{}

func (countPayload) NewAccumulator() (Accumulator, error) { return &countAcc{}, nil }

type countAcc struct{ n int64 }

func (c *countAcc) Consume(vals []any) error { c.n++; return nil }

func (c *countAcc) Merge(other Accumulator) error {
	c.n += other.(*countAcc).n
	return nil
}

func (c *countAcc) Result() any { return c.n }

type collectPayload struct{}

func (collectPayload) NewAccumulator() (Accumulator, error) { return &collectAcc{}, nil }

type collectAcc struct{ out []any }

func (c *collectAcc) Consume(vals []any) error {
	c.out = append(c.out, vals[0])
	return nil
}

func (c *collectAcc) Merge(other Accumulator) error {
	c.out = append(c.out, other.(*collectAcc).out...)
	return nil
}

func (c *collectAcc) Result() any { return c.out }

// failingPayload faults at the given entry value, for abort-semantics tests.
type failingAcc struct{ failAt any }

type failingPayload struct{ failAt any }

func (p failingPayload) NewAccumulator() (Accumulator, error) {
	return &failingAcc{failAt: p.failAt}, nil
}

func (f *failingAcc) Consume(vals []any) error {
	if len(vals) > 0 && vals[0] == f.failAt {
		return fmt.Errorf("boom at %v", vals[0])
	}
	return nil
}

func (f *failingAcc) Merge(other Accumulator) error { return nil }

func (f *failingAcc) Result() any { return nil }

func mustCount(t *testing.T, at Node) *Result[int64] {
	t.Helper()
	b, err := at.Book(nil, 0, countPayload{})
	require.NoError(t, err)
	return As[int64](b)
}

func mustCollect(t *testing.T, at Node, column string) *Result[[]any] {
	t.Helper()
	b, err := at.Book([]string{column}, 1, collectPayload{})
	require.NoError(t, err)
	return As[[]any](b)
}
