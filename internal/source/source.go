// Package source defines the storage collaborator surface consumed by the
// query graph: an addressable range of entries, a column catalog, and
// per-slot readers that bind one entry at a time.
//
// General contract
//   - EntryCount is stable for the lifetime of a scan. Entries are addressed
//     as 0..EntryCount()-1 and no entry is revisited within one scan.
//   - Reader(slot) returns a reader owned exclusively by that worker slot.
//     Readers from different slots must be safe to use concurrently with each
//     other; a single reader is never used from more than one goroutine.
//   - Read binds the given entry and returns a view over its stored columns.
//     The view is only valid until the next Read on the same reader.
//   - ColumnType reports the Go type of a stored column's values. Every value
//     returned by RowView.Value for that column must be assignable to it.
package source

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNoColumn is returned when a requested column is not part of the schema.
var ErrNoColumn = errors.New("no such column")

// DataSource is one columnar event store.
type DataSource interface {
	EntryCount() int64
	ColumnNames() []string
	ColumnType(name string) (reflect.Type, error)
	Reader(slot int) (Reader, error)
}

// Reader binds and reads entries on behalf of a single worker slot.
type Reader interface {
	Read(entry int64) (RowView, error)
	Close() error
}

// RowView exposes the stored column values of one bound entry.
type RowView interface {
	Value(column string) (any, error)
}

// noColumnError wraps ErrNoColumn with the offending name.
func noColumnError(name string) error {
	return fmt.Errorf("%w: %q", ErrNoColumn, name)
}
