package graph

import (
	"fmt"
	"reflect"

	"github.com/colgraph/colgraph/internal/resolve"
)

// Typed attachment helpers. These are the static path: column arity comes
// from the callable's signature, missing column names fall back to the
// graph's default list, and values are checked against the declared types at
// evaluation time.

func colValue[T any](v any, column string) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("column %q holds %T, not %T", column, v, zero)
	}
	return t, nil
}

func typedColumns(at Node, requested []string, needed int) ([]string, error) {
	g, err := at.Owner()
	if err != nil {
		return nil, err
	}
	cols, err := resolve.Names(requested, needed, g.DefaultColumns())
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	return cols, nil
}

// Filter1 attaches a one-column typed filter below at.
func Filter1[A any](at Node, name string, fn func(A) bool, columns ...string) (FilterHandle, error) {
	cols, err := typedColumns(at, columns, 1)
	if err != nil {
		return FilterHandle{}, err
	}
	return at.Filter(name, cols, func(vals []any) (bool, error) {
		a, err := colValue[A](vals[0], cols[0])
		if err != nil {
			return false, err
		}
		return fn(a), nil
	})
}

// Filter2 attaches a two-column typed filter below at.
func Filter2[A, B any](at Node, name string, fn func(A, B) bool, columns ...string) (FilterHandle, error) {
	cols, err := typedColumns(at, columns, 2)
	if err != nil {
		return FilterHandle{}, err
	}
	return at.Filter(name, cols, func(vals []any) (bool, error) {
		a, err := colValue[A](vals[0], cols[0])
		if err != nil {
			return false, err
		}
		b, err := colValue[B](vals[1], cols[1])
		if err != nil {
			return false, err
		}
		return fn(a, b), nil
	})
}

// Derive1 attaches a typed derived column computed from one input column.
// The result type is recorded, so the dynamic path can reference the new
// column.
func Derive1[A, R any](at Node, column string, fn func(A) R, columns ...string) (DeriveHandle, error) {
	cols, err := typedColumns(at, columns, 1)
	if err != nil {
		return DeriveHandle{}, err
	}
	rt := reflect.TypeOf((*R)(nil)).Elem()
	return at.DeriveTyped(column, cols, func(vals []any) (any, error) {
		a, err := colValue[A](vals[0], cols[0])
		if err != nil {
			return nil, err
		}
		return fn(a), nil
	}, rt)
}

// Derive2 attaches a typed derived column computed from two input columns.
func Derive2[A, B, R any](at Node, column string, fn func(A, B) R, columns ...string) (DeriveHandle, error) {
	cols, err := typedColumns(at, columns, 2)
	if err != nil {
		return DeriveHandle{}, err
	}
	rt := reflect.TypeOf((*R)(nil)).Elem()
	return at.DeriveTyped(column, cols, func(vals []any) (any, error) {
		a, err := colValue[A](vals[0], cols[0])
		if err != nil {
			return nil, err
		}
		b, err := colValue[B](vals[1], cols[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}, rt)
}
