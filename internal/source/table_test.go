package source

import (
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestTable_SchemaAndValues(t *testing.T) {
	tab := NewTable()
	require.NoError(t, AddColumn(tab, "pt", []float64{10, 20, 30}))
	require.NoError(t, AddColumn(tab, "q", []int64{-1, 1, 1}))

	t.Run("Entry count and names", func(t *testing.T) {
		require.Equal(t, int64(3), tab.EntryCount())
		if diff := cmp.Diff([]string{"pt", "q"}, tab.ColumnNames()); diff != "" {
			t.Fatalf("column names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Column types", func(t *testing.T) {
		typ, err := tab.ColumnType("pt")
		require.NoError(t, err)
		require.Equal(t, reflect.TypeOf(float64(0)), typ)

		_, err = tab.ColumnType("nope")
		require.ErrorIs(t, err, ErrNoColumn)
	})

	t.Run("Read values", func(t *testing.T) {
		r, err := tab.Reader(0)
		require.NoError(t, err)
		defer r.Close()

		row, err := r.Read(1)
		require.NoError(t, err)
		v, err := row.Value("pt")
		require.NoError(t, err)
		require.Equal(t, float64(20), v)
		v, err = row.Value("q")
		require.NoError(t, err)
		require.Equal(t, int64(1), v)

		_, err = row.Value("nope")
		require.ErrorIs(t, err, ErrNoColumn)
	})

	t.Run("Out of range entry", func(t *testing.T) {
		r, err := tab.Reader(0)
		require.NoError(t, err)
		defer r.Close()
		_, err = r.Read(3)
		require.Error(t, err)
	})
}

func TestTable_AddColumnValidation(t *testing.T) {
	tab := NewTable()
	require.NoError(t, AddColumn(tab, "a", []int64{1, 2}))
	require.Error(t, AddColumn(tab, "a", []int64{1, 2}), "duplicate name")
	require.Error(t, AddColumn(tab, "b", []int64{1}), "length mismatch")
	require.Error(t, AddColumn(tab, "", []int64{1, 2}), "empty name")
}
