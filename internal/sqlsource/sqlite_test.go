package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/colgraph/colgraph/internal/actions"
	"github.com/colgraph/colgraph/internal/graph"
	"github.com/colgraph/colgraph/internal/source"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE hits (pt REAL NOT NULL, q INTEGER NOT NULL, tag TEXT NOT NULL)`)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		tag := "even"
		if i%2 == 1 {
			tag = "odd"
		}
		_, err = db.Exec(`INSERT INTO hits (pt, q, tag) VALUES (?, ?, ?)`,
			float64(i*10+5), int64(1-2*(i%2)), tag)
		require.NoError(t, err)
	}
	return path
}

func TestOpen_Schema(t *testing.T) {
	d, err := Open(newTestDB(t), "hits")
	require.NoError(t, err)
	defer d.Close()

	require.Equal(t, int64(10), d.EntryCount())
	require.Equal(t, []string{"pt", "q", "tag"}, d.ColumnNames())

	typ, err := d.ColumnType("pt")
	require.NoError(t, err)
	require.Equal(t, "float64", typ.String())
	typ, err = d.ColumnType("q")
	require.NoError(t, err)
	require.Equal(t, "int64", typ.String())
	typ, err = d.ColumnType("tag")
	require.NoError(t, err)
	require.Equal(t, "string", typ.String())

	_, err = d.ColumnType("missing")
	require.True(t, errors.Is(err, source.ErrNoColumn))
}

func TestOpen_MissingTable(t *testing.T) {
	_, err := Open(newTestDB(t), "nope")
	require.Error(t, err)
}

func TestReader_Values(t *testing.T) {
	d, err := Open(newTestDB(t), "hits")
	require.NoError(t, err)
	defer d.Close()

	r, err := d.Reader(0)
	require.NoError(t, err)
	defer r.Close()

	row, err := r.Read(3)
	require.NoError(t, err)
	pt, err := row.Value("pt")
	require.NoError(t, err)
	require.Equal(t, float64(35), pt)
	q, err := row.Value("q")
	require.NoError(t, err)
	require.Equal(t, int64(-1), q)
	tag, err := row.Value("tag")
	require.NoError(t, err)
	require.Equal(t, "odd", tag)

	_, err = row.Value("missing")
	require.True(t, errors.Is(err, source.ErrNoColumn))

	_, err = r.Read(10)
	require.Error(t, err)
}

// The adapter plugs straight into the engine, including multi-slot scans.
func TestGraphOverSQLite(t *testing.T) {
	d, err := Open(newTestDB(t), "hits")
	require.NoError(t, err)
	defer d.Close()

	g, err := graph.New(d, graph.WithSlots(3))
	require.NoError(t, err)
	pos, err := graph.Filter1(g.Root(), "positive", func(q int64) bool { return q > 0 }, "q")
	require.NoError(t, err)

	count, err := actions.Count(pos)
	require.NoError(t, err)
	sum, err := actions.Sum[float64](pos, "pt")
	require.NoError(t, err)

	n, err := count.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	s, err := sum.Value(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(5+25+45+65+85), s)
}
