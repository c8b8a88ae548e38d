package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/store"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) store.Store

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		data := []byte(`[{"id":"root"}]`)
		err := st.Save("canvasNodes_alice", data)
		require.NoError(t, err)

		loaded, err := st.Load("canvasNodes_alice")
		require.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		_, err := st.Load("canvasNodes_nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		require.NoError(t, st.Save("k", []byte("first")))
		require.NoError(t, st.Save("k", []byte("second")))

		loaded, err := st.Load("k")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run(name+"/Keys_Sorted", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		require.NoError(t, st.Save("b", []byte("2")))
		require.NoError(t, st.Save("a", []byte("1")))
		require.NoError(t, st.Save("c", []byte("3")))

		keys, err := st.Keys()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		require.NoError(t, st.Save("k", []byte("data")))
		require.NoError(t, st.Delete("k"))

		_, err := st.Load("k")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Delete_Nonexistent", func(t *testing.T) {
		st := factory(t)
		defer st.Close()

		// Should not error when deleting nonexistent
		assert.NoError(t, st.Delete("nobody"))
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		st := factory(t)
		require.NoError(t, st.Close())

		assert.ErrorIs(t, st.Save("k", []byte("x")), store.ErrStoreClosed)
		_, err := st.Load("k")
		assert.ErrorIs(t, err, store.ErrStoreClosed)
		assert.ErrorIs(t, st.Delete("k"), store.ErrStoreClosed)
		_, err = st.Keys()
		assert.ErrorIs(t, err, store.ErrStoreClosed)
	})
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContractTest(t, "memory", func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}

func TestSQLiteStore_Contract(t *testing.T) {
	storeContractTest(t, "sqlite", func(t *testing.T) store.Store {
		st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "canvas.db"))
		require.NoError(t, err)
		return st
	})
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.db")

	st, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Save("canvasNodes_alice", []byte("[]")))
	require.NoError(t, st.Close())

	// Data survives process restart.
	st, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	loaded, err := st.Load("canvasNodes_alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), loaded)
}

func TestMemoryStore_Len(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	assert.Zero(t, st.Len())
	require.NoError(t, st.Save("a", []byte("1")))
	require.NoError(t, st.Save("b", []byte("2")))
	assert.Equal(t, 2, st.Len())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	st := store.NewMemoryStore()
	defer st.Close()

	data := []byte("original")
	require.NoError(t, st.Save("k", data))
	data[0] = 'X'

	loaded, err := st.Load("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), loaded)
}
