// Package actions supplies the aggregation payloads booked against the
// graph (count, sum, mean, min/max, take, reduce, and a fixed-bin 1-D
// histogram) plus typed booking helpers. Each payload implements the
// engine's consume/merge contract; the engine never looks inside an
// accumulator.
package actions

import (
	"cmp"
	"fmt"

	"github.com/colgraph/colgraph/internal/graph"
)

// Number covers the column types the numeric payloads accept directly.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

func mergeAs[T graph.Accumulator](other graph.Accumulator) (T, error) {
	t, ok := other.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cannot merge %T into %T", other, zero)
	}
	return t, nil
}

// ---- count ----

type countPayload struct{}

func (countPayload) NewAccumulator() (graph.Accumulator, error) { return &countAcc{}, nil }

type countAcc struct{ n int64 }

func (c *countAcc) Consume(vals []any) error { c.n++; return nil }

func (c *countAcc) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*countAcc](other)
	if err != nil {
		return err
	}
	c.n += o.n
	return nil
}

func (c *countAcc) Result() any { return c.n }

// Count books a count of the entries accepted by at's chain.
func Count(at graph.Node) (*graph.Result[int64], error) {
	b, err := at.Book(nil, 0, countPayload{})
	if err != nil {
		return nil, err
	}
	return graph.As[int64](b), nil
}

// ---- sum ----

type sumPayload[T Number] struct{}

func (sumPayload[T]) NewAccumulator() (graph.Accumulator, error) { return &sumAcc[T]{}, nil }

type sumAcc[T Number] struct{ sum T }

func (s *sumAcc[T]) Consume(vals []any) error {
	v, ok := vals[0].(T)
	if !ok {
		return fmt.Errorf("sum: column holds %T, not %T", vals[0], s.sum)
	}
	s.sum += v
	return nil
}

func (s *sumAcc[T]) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*sumAcc[T]](other)
	if err != nil {
		return err
	}
	s.sum += o.sum
	return nil
}

func (s *sumAcc[T]) Result() any { return s.sum }

// Sum books the sum of a column over accepted entries. With no explicit
// column the graph's first default column is used.
func Sum[T Number](at graph.Node, columns ...string) (*graph.Result[T], error) {
	b, err := at.Book(columns, 1, sumPayload[T]{})
	if err != nil {
		return nil, err
	}
	return graph.As[T](b), nil
}

// ---- mean ----

type meanPayload struct{}

func (meanPayload) NewAccumulator() (graph.Accumulator, error) { return &meanAcc{}, nil }

type meanAcc struct {
	sum float64
	n   int64
}

func (m *meanAcc) Consume(vals []any) error {
	f, err := toFloat64(vals[0])
	if err != nil {
		return fmt.Errorf("mean: %w", err)
	}
	m.sum += f
	m.n++
	return nil
}

func (m *meanAcc) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*meanAcc](other)
	if err != nil {
		return err
	}
	m.sum += o.sum
	m.n += o.n
	return nil
}

func (m *meanAcc) Result() any {
	if m.n == 0 {
		return float64(0)
	}
	return m.sum / float64(m.n)
}

// Mean books the arithmetic mean of a numeric column over accepted entries.
// An empty selection yields 0.
func Mean(at graph.Node, columns ...string) (*graph.Result[float64], error) {
	b, err := at.Book(columns, 1, meanPayload{})
	if err != nil {
		return nil, err
	}
	return graph.As[float64](b), nil
}

// ---- min / max ----

type extremumPayload[T cmp.Ordered] struct {
	max bool
}

func (p extremumPayload[T]) NewAccumulator() (graph.Accumulator, error) {
	return &extremumAcc[T]{max: p.max}, nil
}

type extremumAcc[T cmp.Ordered] struct {
	max  bool
	set  bool
	best T
}

func (e *extremumAcc[T]) take(v T) {
	if !e.set || (e.max && v > e.best) || (!e.max && v < e.best) {
		e.best = v
		e.set = true
	}
}

func (e *extremumAcc[T]) Consume(vals []any) error {
	v, ok := vals[0].(T)
	if !ok {
		var zero T
		return fmt.Errorf("extremum: column holds %T, not %T", vals[0], zero)
	}
	e.take(v)
	return nil
}

func (e *extremumAcc[T]) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*extremumAcc[T]](other)
	if err != nil {
		return err
	}
	if o.set {
		e.take(o.best)
	}
	return nil
}

func (e *extremumAcc[T]) Result() any { return e.best }

// Min books the minimum of a column over accepted entries. The zero value is
// returned when nothing is accepted.
func Min[T cmp.Ordered](at graph.Node, columns ...string) (*graph.Result[T], error) {
	b, err := at.Book(columns, 1, extremumPayload[T]{max: false})
	if err != nil {
		return nil, err
	}
	return graph.As[T](b), nil
}

// Max books the maximum of a column over accepted entries.
func Max[T cmp.Ordered](at graph.Node, columns ...string) (*graph.Result[T], error) {
	b, err := at.Book(columns, 1, extremumPayload[T]{max: true})
	if err != nil {
		return nil, err
	}
	return graph.As[T](b), nil
}

// ---- take ----

type takePayload[T any] struct{}

func (takePayload[T]) NewAccumulator() (graph.Accumulator, error) { return &takeAcc[T]{}, nil }

type takeAcc[T any] struct{ out []T }

func (t *takeAcc[T]) Consume(vals []any) error {
	v, ok := vals[0].(T)
	if !ok {
		var zero T
		return fmt.Errorf("take: column holds %T, not %T", vals[0], zero)
	}
	t.out = append(t.out, v)
	return nil
}

func (t *takeAcc[T]) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*takeAcc[T]](other)
	if err != nil {
		return err
	}
	t.out = append(t.out, o.out...)
	return nil
}

func (t *takeAcc[T]) Result() any { return t.out }

// Take books the collection of a column's values over accepted entries.
// Slots are concatenated in chunk order; within a slot the source order is
// preserved. Across slots no further ordering is guaranteed.
func Take[T any](at graph.Node, columns ...string) (*graph.Result[[]T], error) {
	b, err := at.Book(columns, 1, takePayload[T]{})
	if err != nil {
		return nil, err
	}
	return graph.As[[]T](b), nil
}

// ---- reduce ----

type reducePayload[T any] struct {
	fn   func(a, b T) T
	init T
}

func (p reducePayload[T]) NewAccumulator() (graph.Accumulator, error) {
	return &reduceAcc[T]{fn: p.fn, acc: p.init}, nil
}

type reduceAcc[T any] struct {
	fn  func(a, b T) T
	acc T
}

func (r *reduceAcc[T]) Consume(vals []any) error {
	v, ok := vals[0].(T)
	if !ok {
		var zero T
		return fmt.Errorf("reduce: column holds %T, not %T", vals[0], zero)
	}
	r.acc = r.fn(r.acc, v)
	return nil
}

func (r *reduceAcc[T]) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*reduceAcc[T]](other)
	if err != nil {
		return err
	}
	r.acc = r.fn(r.acc, o.acc)
	return nil
}

func (r *reduceAcc[T]) Result() any { return r.acc }

// Reduce books a fold of a column with fn, starting from init in every slot.
// fn must be commutative and associative and init must be its identity
// element, or multi-slot runs will disagree with single-slot runs.
func Reduce[T any](at graph.Node, fn func(a, b T) T, init T, columns ...string) (*graph.Result[T], error) {
	b, err := at.Book(columns, 1, reducePayload[T]{fn: fn, init: init})
	if err != nil {
		return nil, err
	}
	return graph.As[T](b), nil
}

// ---- numeric coercion ----

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
