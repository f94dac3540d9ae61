// Package sqlsource adapts a SQLite table into a source.DataSource: rows are
// entries (in rowid order, snapshotted at open), declared columns are stored
// columns typed by their SQLite affinity.
//
// NULL values have no representation at the column seam and surface as
// per-entry read errors. Tables that may hold NULLs should be cleaned or
// projected through a view first.
package sqlsource

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/colgraph/colgraph/internal/source"
)

// DB is one SQLite table opened as a data source.
type DB struct {
	db     *sql.DB
	table  string
	names  []string
	types  map[string]reflect.Type
	colIdx map[string]int
	rowids []int64
	query  string
}

// Open opens the SQLite database at path and binds table as the entry range.
// The rowid order is captured once; concurrent writers are not supported.
func Open(path, table string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	d := &DB{
		db:     db,
		table:  table,
		types:  make(map[string]reflect.Type),
		colIdx: make(map[string]int),
	}
	if err := d.loadSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.loadRowIDs(); err != nil {
		db.Close()
		return nil, err
	}
	quoted := make([]string, len(d.names))
	for i, n := range d.names {
		quoted[i] = quoteIdent(n)
	}
	d.query = fmt.Sprintf("SELECT %s FROM %s WHERE rowid = ?",
		strings.Join(quoted, ", "), quoteIdent(table))
	return d, nil
}

func (d *DB) loadSchema() error {
	rows, err := d.db.Query("SELECT name, type FROM pragma_table_info(?)", d.table)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name, decl string
		if err := rows.Scan(&name, &decl); err != nil {
			return err
		}
		d.colIdx[name] = len(d.names)
		d.names = append(d.names, name)
		d.types[name] = affinityType(decl)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(d.names) == 0 {
		return fmt.Errorf("table %q does not exist or has no columns", d.table)
	}
	return nil
}

func (d *DB) loadRowIDs() error {
	rows, err := d.db.Query(fmt.Sprintf("SELECT rowid FROM %s ORDER BY rowid", quoteIdent(d.table)))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		d.rowids = append(d.rowids, id)
	}
	return rows.Err()
}

// affinityType maps a declared SQLite column type to the Go type its values
// are read as, following SQLite's affinity rules.
func affinityType(decl string) reflect.Type {
	u := strings.ToUpper(decl)
	switch {
	case strings.Contains(u, "INT"):
		return reflect.TypeOf(int64(0))
	case strings.Contains(u, "CHAR"), strings.Contains(u, "CLOB"), strings.Contains(u, "TEXT"):
		return reflect.TypeOf("")
	case strings.Contains(u, "BLOB"), u == "":
		return reflect.TypeOf([]byte(nil))
	default: // REAL, FLOA, DOUB, NUMERIC and friends
		return reflect.TypeOf(float64(0))
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *DB) EntryCount() int64 { return int64(len(d.rowids)) }

func (d *DB) ColumnNames() []string {
	return append([]string(nil), d.names...)
}

func (d *DB) ColumnType(name string) (reflect.Type, error) {
	t, ok := d.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", source.ErrNoColumn, name)
	}
	return t, nil
}

// Reader prepares a per-slot statement. database/sql connections pool under
// the hood, so slot readers do not contend on a single connection.
func (d *DB) Reader(slot int) (source.Reader, error) {
	stmt, err := d.db.Prepare(d.query)
	if err != nil {
		return nil, err
	}
	return &sqlReader{d: d, stmt: stmt}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error { return d.db.Close() }

type sqlReader struct {
	d    *DB
	stmt *sql.Stmt
	row  sqlRow
}

func (r *sqlReader) Read(entry int64) (source.RowView, error) {
	if entry < 0 || entry >= int64(len(r.d.rowids)) {
		return nil, fmt.Errorf("entry %d out of range [0,%d)", entry, len(r.d.rowids))
	}
	holders := make([]any, len(r.d.names))
	for i, n := range r.d.names {
		holders[i] = reflect.New(r.d.types[n]).Interface()
	}
	if err := r.stmt.QueryRow(r.d.rowids[entry]).Scan(holders...); err != nil {
		return nil, fmt.Errorf("read entry %d: %w", entry, err)
	}
	vals := make([]any, len(holders))
	for i, h := range holders {
		vals[i] = reflect.ValueOf(h).Elem().Interface()
	}
	r.row = sqlRow{d: r.d, vals: vals}
	return &r.row, nil
}

func (r *sqlReader) Close() error { return r.stmt.Close() }

type sqlRow struct {
	d    *DB
	vals []any
}

func (r *sqlRow) Value(column string) (any, error) {
	i, ok := r.d.colIdx[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", source.ErrNoColumn, column)
	}
	return r.vals[i], nil
}
