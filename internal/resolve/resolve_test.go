package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	t.Run("Explicit names pass through", func(t *testing.T) {
		got, err := Names([]string{"x", "y"}, 2, []string{"a", "b", "c"})
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"x", "y"}, got); diff != "" {
			t.Fatalf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Empty request uses default prefix", func(t *testing.T) {
		got, err := Names(nil, 2, []string{"a", "b", "c"})
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
			t.Fatalf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Short defaults fail", func(t *testing.T) {
		_, err := Names(nil, 2, []string{"a"})
		require.Error(t, err)
	})

	t.Run("Arity mismatch fails", func(t *testing.T) {
		_, err := Names([]string{"x"}, 2, []string{"a", "b"})
		require.Error(t, err)
		_, err = Names([]string{"x", "y", "z"}, 2, nil)
		require.Error(t, err)
	})

	t.Run("Empty name in request fails", func(t *testing.T) {
		_, err := Names([]string{"", "y"}, 2, []string{"a", "b", "c"})
		require.Error(t, err)
	})

	t.Run("Zero needed with no request", func(t *testing.T) {
		got, err := Names(nil, 0, nil)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("Result does not alias inputs", func(t *testing.T) {
		defaults := []string{"a", "b"}
		got, err := Names(nil, 2, defaults)
		require.NoError(t, err)
		got[0] = "mutated"
		require.Equal(t, "a", defaults[0])
	})
}
