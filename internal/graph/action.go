package graph

import (
	"context"
	"fmt"

	"github.com/colgraph/colgraph/internal/eventbus"
	"github.com/colgraph/colgraph/internal/events"
	"github.com/colgraph/colgraph/internal/resolve"
)

// Payload is the aggregation collaborator behind an action: it mints one
// accumulator per worker slot. The engine never inspects accumulator
// internals; it only feeds entries in and merges slots at the end.
type Payload interface {
	NewAccumulator() (Accumulator, error)
}

// Accumulator is one slot's partial result.
//
//   - Consume is called once per accepted entry with the action's declared
//     column values, always from the owning slot's goroutine.
//   - Merge folds another slot's accumulator into this one after the scan
//     joins. The operation must be commutative and associative for the
//     1-slot and n-slot runs of the same graph to agree.
//   - Result extracts the final value after all merges.
type Accumulator interface {
	Consume(vals []any) error
	Merge(other Accumulator) error
	Result() any
}

type actionState uint8

const (
	stateBooked actionState = iota
	stateDone
)

// action is a terminal consumer booked against a node. Created booked;
// becomes done when a scan has merged its per-slot partials into the final
// cell. Actions never run individually: the first result access runs every
// action booked at that moment in one shared scan.
type action struct {
	parent  *node
	cols    []string
	payload Payload

	parts []Accumulator // one per slot, live only during a scan
	final any
	state actionState
}

func (a *action) kind() string { return fmt.Sprintf("%T", a.payload) }

// Booking is the caller-visible result cell of a booked action: empty until
// the action is done, then immutable.
type Booking struct {
	g *Graph
	a *action
}

// Book registers an action below this node. columns and needed go through
// the column resolver against the graph's default-column list; p supplies
// the accumulator per slot.
func (h handle) Book(columns []string, needed int, p Payload) (*Booking, error) {
	g, err := h.Owner()
	if err != nil {
		return nil, err
	}
	cols, err := resolve.Names(columns, needed, g.defaults)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkColumns(h.n, cols); err != nil {
		return nil, err
	}
	a := &action{parent: h.n, cols: cols, payload: p}
	h.n.children++
	g.booked = append(g.booked, a)
	eventbus.Publish(context.Background(), events.ActionBooked{Kind: a.kind(), Columns: cols})
	return &Booking{g: g, a: a}, nil
}

// Value returns the action's result, triggering a scan of all currently
// booked actions if this one has not run yet. Once done, the cached value is
// returned without rescanning.
func (b *Booking) Value(ctx context.Context) (any, error) {
	b.g.mu.Lock()
	defer b.g.mu.Unlock()
	if b.g.closed {
		return nil, ErrNotReachable
	}
	if b.a.state == stateDone {
		return b.a.final, nil
	}
	if err := b.g.scan(ctx, nil); err != nil {
		return nil, err
	}
	return b.a.final, nil
}

// Result is a typed view over a Booking.
type Result[T any] struct {
	b *Booking
}

// As wraps a booking with the expected result type.
func As[T any](b *Booking) *Result[T] {
	return &Result[T]{b: b}
}

// Value returns the typed action result, triggering a scan if needed.
func (r *Result[T]) Value(ctx context.Context) (T, error) {
	var zero T
	v, err := r.b.Value(ctx)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("action result is %T, not %T", v, zero)
	}
	return t, nil
}

// Booking returns the untyped booking behind this result.
func (r *Result[T]) Booking() *Booking { return r.b }
