package graph

import (
	"context"
	"reflect"
	"sync"

	"github.com/colgraph/colgraph/internal/source"
)

// Graph owns one data source and the computation DAG built over it. The slot
// count is fixed at construction; every node carries one private cache row
// per slot.
type Graph struct {
	mu sync.Mutex

	src      source.DataSource
	slots    int
	defaults []string

	stored  map[string]struct{}
	derived map[string]*node
	nodes   []*node
	root    *node

	booked []*action
	hasRun bool
	closed bool
}

// Option configures a Graph at construction.
type Option func(*Graph)

// WithSlots sets the number of worker slots a scan is partitioned across.
// The default is 1 (single-threaded).
func WithSlots(n int) Option {
	return func(g *Graph) { g.slots = n }
}

// WithDefaultColumns sets the ordered fallback column list consulted when a
// node declares fewer explicit columns than it needs.
func WithDefaultColumns(names ...string) Option {
	return func(g *Graph) { g.defaults = append([]string(nil), names...) }
}

// New builds an empty graph over src.
func New(src source.DataSource, opts ...Option) (*Graph, error) {
	g := &Graph{
		src:     src,
		slots:   1,
		stored:  make(map[string]struct{}),
		derived: make(map[string]*node),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.slots < 1 {
		return nil, configErrorf("slot count %d is not positive", g.slots)
	}
	for _, name := range src.ColumnNames() {
		g.stored[name] = struct{}{}
	}
	g.root = newNode(kindRoot, nil, g.slots)
	g.nodes = append(g.nodes, g.root)
	return g, nil
}

// Close detaches the graph from its handles. Subsequent handle operations
// fail with ErrNotReachable. Close does not touch the data source.
func (g *Graph) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
}

// Root returns the handle for the source-backed root node.
func (g *Graph) Root() RootHandle {
	return RootHandle{handle{g: g, n: g.root}}
}

// DefaultColumns returns the graph's fallback column list.
func (g *Graph) DefaultColumns() []string {
	return append([]string(nil), g.defaults...)
}

// ColumnNames lists every readable column: stored first (source order), then
// derived (attachment order is not guaranteed).
func (g *Graph) ColumnNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.src.ColumnNames()
	for name := range g.derived {
		out = append(out, name)
	}
	return out
}

// ColumnType reports the value type of a stored or derived column. Derived
// columns attached through the untyped path have no statically known type
// and yield a ConfigError.
func (g *Graph) ColumnType(name string) (reflect.Type, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.columnTypeLocked(name)
}

func (g *Graph) columnTypeLocked(name string) (reflect.Type, error) {
	if d, ok := g.derived[name]; ok {
		if d.deriveT == nil {
			return nil, configErrorf("type of derived column %q is not statically known", name)
		}
		return d.deriveT, nil
	}
	if _, ok := g.stored[name]; ok {
		return g.src.ColumnType(name)
	}
	return nil, configErrorf("column %q is neither stored nor derived", name)
}

// checkColumns verifies that every column is stored, or derived by an
// ancestor of at (a derived column is only visible to descendants of its
// defining node).
func (g *Graph) checkColumns(at *node, cols []string) error {
	for _, name := range cols {
		if _, ok := g.stored[name]; ok {
			continue
		}
		d, ok := g.derived[name]
		if !ok {
			return configErrorf("column %q is neither stored nor derived", name)
		}
		if !d.isAncestorOf(at) {
			return configErrorf("derived column %q is not visible from this node", name)
		}
	}
	return nil
}

func (g *Graph) addFilter(parent *node, name string, cols []string, fn FilterFunc) (FilterHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkColumns(parent, cols); err != nil {
		return FilterHandle{}, err
	}
	n := newNode(kindFilter, parent, g.slots)
	n.name = name
	n.cols = cols
	n.pred = fn
	parent.children++
	g.nodes = append(g.nodes, n)
	return FilterHandle{handle{g: g, n: n}}, nil
}

func (g *Graph) addDerive(parent *node, column string, cols []string, fn DeriveFunc, result reflect.Type) (DeriveHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if column == "" {
		return DeriveHandle{}, configErrorf("derived column name must not be empty")
	}
	if _, ok := g.stored[column]; ok {
		return DeriveHandle{}, configErrorf("column name %q conflicts with a stored column", column)
	}
	if _, ok := g.derived[column]; ok {
		return DeriveHandle{}, configErrorf("column name %q conflicts with an earlier derived column", column)
	}
	if err := g.checkColumns(parent, cols); err != nil {
		return DeriveHandle{}, err
	}
	n := newNode(kindDerive, parent, g.slots)
	n.name = column
	n.cols = cols
	n.derive = fn
	n.deriveT = result
	parent.children++
	g.nodes = append(g.nodes, n)
	g.derived[column] = n
	return DeriveHandle{handle{g: g, n: n}}, nil
}

func (g *Graph) addRange(parent *node, start, stop, stride int64) (RangeHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.slots > 1 {
		return RangeHandle{}, configErrorf("range gates are incompatible with multi-slot execution (%d slots)", g.slots)
	}
	if stride <= 0 {
		return RangeHandle{}, configErrorf("range stride %d is not positive", stride)
	}
	if start < 0 {
		return RangeHandle{}, configErrorf("range start %d is negative", start)
	}
	if stop != 0 && stop < start {
		return RangeHandle{}, configErrorf("range stop %d is before start %d", stop, start)
	}
	n := newNode(kindRange, parent, g.slots)
	n.name = "range"
	n.start, n.stop, n.stride = start, stop, stride
	parent.children++
	g.nodes = append(g.nodes, n)
	return RangeHandle{handle{g: g, n: n}}, nil
}

// Node is the capability surface shared by all graph-node handles: attach a
// child, book an action, or ask for a cut-flow report.
type Node interface {
	Filter(name string, columns []string, fn FilterFunc) (FilterHandle, error)
	Derive(column string, columns []string, fn DeriveFunc) (DeriveHandle, error)
	DeriveTyped(column string, columns []string, fn DeriveFunc, result reflect.Type) (DeriveHandle, error)
	Range(start, stop, stride int64) (RangeHandle, error)
	Book(columns []string, needed int, p Payload) (*Booking, error)
	Report(ctx context.Context) ([]FilterStat, error)
	Owner() (*Graph, error)
}

// handle is a caller-visible reference to one node plus a fallible
// back-reference to the graph owner.
type handle struct {
	g *Graph
	n *node
}

// RootHandle references the data-source-backed root node.
type RootHandle struct{ handle }

// FilterHandle references a filter node.
type FilterHandle struct{ handle }

// DeriveHandle references a derived-column node.
type DeriveHandle struct{ handle }

// RangeHandle references a range gate.
type RangeHandle struct{ handle }

// Owner returns the owning graph, or ErrNotReachable once it is closed.
func (h handle) Owner() (*Graph, error) {
	if h.g == nil {
		return nil, ErrNotReachable
	}
	h.g.mu.Lock()
	closed := h.g.closed
	h.g.mu.Unlock()
	if closed {
		return nil, ErrNotReachable
	}
	return h.g, nil
}

// Filter attaches a filter below this node. columns are used exactly as
// given; name may be empty for an anonymous filter (anonymous filters do not
// appear in reports).
func (h handle) Filter(name string, columns []string, fn FilterFunc) (FilterHandle, error) {
	g, err := h.Owner()
	if err != nil {
		return FilterHandle{}, err
	}
	return g.addFilter(h.n, name, columns, fn)
}

// Derive attaches a derived column below this node. The value type is not
// statically known; downstream dynamic-path nodes cannot reference it.
func (h handle) Derive(column string, columns []string, fn DeriveFunc) (DeriveHandle, error) {
	return h.DeriveTyped(column, columns, fn, nil)
}

// DeriveTyped attaches a derived column whose value type is known.
func (h handle) DeriveTyped(column string, columns []string, fn DeriveFunc, result reflect.Type) (DeriveHandle, error) {
	g, err := h.Owner()
	if err != nil {
		return DeriveHandle{}, err
	}
	return g.addDerive(h.n, column, columns, fn, result)
}

// Range attaches a stride/offset/limit gate below this node. Range gates are
// single-slot only and are rejected at attach time on a multi-slot graph.
func (h handle) Range(start, stop, stride int64) (RangeHandle, error) {
	g, err := h.Owner()
	if err != nil {
		return RangeHandle{}, err
	}
	return g.addRange(h.n, start, stop, stride)
}
