package source

import (
	"fmt"
	"reflect"
)

// Table is an in-memory columnar DataSource. Columns are typed slices sharing
// one entry count. It backs tests, the demo program, and small CLI inputs.
type Table struct {
	entries int64
	names   []string
	cols    map[string]tableColumn
}

type tableColumn struct {
	typ reflect.Type
	get func(entry int64) any
}

// NewTable creates an empty table. The first column added fixes the entry
// count; later columns must match it.
func NewTable() *Table {
	return &Table{entries: -1, cols: make(map[string]tableColumn)}
}

// AddColumn registers values as the stored column name.
func AddColumn[T any](t *Table, name string, values []T) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("column %q added twice", name)
	}
	if t.entries >= 0 && int64(len(values)) != t.entries {
		return fmt.Errorf("column %q has %d entries, table has %d", name, len(values), t.entries)
	}
	t.entries = int64(len(values))
	t.names = append(t.names, name)
	t.cols[name] = tableColumn{
		typ: reflect.TypeOf((*T)(nil)).Elem(),
		get: func(entry int64) any { return values[entry] },
	}
	return nil
}

func (t *Table) EntryCount() int64 { return t.entries }

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) ColumnType(name string) (reflect.Type, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, noColumnError(name)
	}
	return c.typ, nil
}

// Reader returns a reader for one worker slot. Table data is immutable after
// construction, so all readers share the same backing slices.
func (t *Table) Reader(slot int) (Reader, error) {
	return &tableReader{t: t}, nil
}

type tableReader struct {
	t   *Table
	row tableRow
}

func (r *tableReader) Read(entry int64) (RowView, error) {
	if entry < 0 || entry >= r.t.entries {
		return nil, fmt.Errorf("entry %d out of range [0,%d)", entry, r.t.entries)
	}
	r.row = tableRow{t: r.t, entry: entry}
	return &r.row, nil
}

func (r *tableReader) Close() error { return nil }

type tableRow struct {
	t     *Table
	entry int64
}

func (r *tableRow) Value(column string) (any, error) {
	c, ok := r.t.cols[column]
	if !ok {
		return nil, noColumnError(column)
	}
	return c.get(r.entry), nil
}
