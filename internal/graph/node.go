package graph

import (
	"reflect"
)

type kind uint8

const (
	kindRoot kind = iota
	kindFilter
	kindDerive
	kindRange
)

// FilterFunc decides whether an entry passes. vals holds the node's declared
// columns in order.
type FilterFunc func(vals []any) (bool, error)

// DeriveFunc computes a derived column value from the node's declared
// columns.
type DeriveFunc func(vals []any) (any, error)

// slotState is one worker slot's private cache row for a node. Each slot
// writes only its own row; rows are read across slots only after the
// end-of-run join.
type slotState struct {
	entry    int64 // last entry decided, -1 = none
	pass     bool
	valEntry int64 // last entry the derive value was computed for
	val      any
	seen     int64 // range: upstream-accepted entries counted so far
	passed   int64 // filter: entries accepted
	total    int64 // filter: entries examined
}

// node is one vertex of the computation graph: the source-backed root, a
// filter, a derived column, or a range gate. Action terminals hang off nodes
// but are not nodes themselves (see action.go).
type node struct {
	kind     kind
	name     string
	parent   *node
	children int // dependents registered against this node; advisory only

	cols    []string
	pred    FilterFunc
	derive  DeriveFunc
	deriveT reflect.Type // derived value type when statically known

	start, stop, stride int64

	slots []slotState
}

func newNode(k kind, parent *node, slotCount int) *node {
	n := &node{kind: k, parent: parent, slots: make([]slotState, slotCount)}
	n.resetSlots()
	return n
}

func (n *node) resetSlots() {
	for i := range n.slots {
		n.slots[i] = slotState{entry: -1, valEntry: -1}
	}
}

// passes reports whether the chain ending at n accepts the current entry.
// The decision is cached per (entry, slot): re-asking for the same entry is
// free, a new entry recomputes, pulling parent decisions first. A parent
// rejection short-circuits: the node's own predicate is not run.
func (n *node) passes(ec *evalCtx) (bool, error) {
	if n.kind == kindRoot {
		return true, nil
	}
	s := &n.slots[ec.slot]
	if s.entry == ec.entry {
		return s.pass, nil
	}
	ok, err := n.parent.passes(ec)
	if err != nil {
		return false, err
	}
	s.entry = ec.entry
	if !ok {
		s.pass = false
		return false, nil
	}
	switch n.kind {
	case kindFilter:
		vals, err := ec.values(n.cols)
		if err != nil {
			s.entry = -1
			return false, err
		}
		pass, err := n.pred(vals)
		if err != nil {
			s.entry = -1
			return false, err
		}
		s.total++
		if pass {
			s.passed++
		}
		s.pass = pass
	case kindDerive:
		// A derive never gates; its value is computed on demand.
		s.pass = true
	case kindRange:
		idx := s.seen
		s.seen++
		s.pass = idx >= n.start &&
			(n.stop == 0 || idx < n.stop) &&
			(idx-n.start)%n.stride == 0
	}
	return s.pass, nil
}

// value returns the derived column value for the current entry, computing it
// at most once per (entry, slot). Callers reach here only through chains
// whose upstream filters accepted the entry.
func (n *node) value(ec *evalCtx) (any, error) {
	s := &n.slots[ec.slot]
	if s.valEntry == ec.entry {
		return s.val, nil
	}
	vals, err := ec.values(n.cols)
	if err != nil {
		return nil, err
	}
	v, err := n.derive(vals)
	if err != nil {
		return nil, err
	}
	s.valEntry = ec.entry
	s.val = v
	return v, nil
}

// isAncestorOf reports whether n appears on the parent chain of other
// (inclusive of other itself).
func (n *node) isAncestorOf(other *node) bool {
	for c := other; c != nil; c = c.parent {
		if c == n {
			return true
		}
	}
	return false
}
