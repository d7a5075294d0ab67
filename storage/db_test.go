package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	defer db.Close()

	_, ok, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	got, ok, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	require.NoError(t, db.Delete([]byte("k")))
	_, ok, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBatchStaging(t *testing.T) {
	b := NewBatch()
	b.Put([]byte("a"), []byte("1"))
	b.Put([]byte("a"), []byte("2"))
	b.Delete([]byte("b"))

	v, staged, deleted := b.Get([]byte("a"))
	require.True(t, staged)
	require.False(t, deleted)
	require.Equal(t, []byte("2"), v)

	_, staged, deleted = b.Get([]byte("b"))
	require.True(t, staged)
	require.True(t, deleted)

	_, staged, _ = b.Get([]byte("c"))
	require.False(t, staged)

	// A put after a delete revives the key.
	b.Put([]byte("b"), []byte("3"))
	v, staged, deleted = b.Get([]byte("b"))
	require.True(t, staged)
	require.False(t, deleted)
	require.Equal(t, []byte("3"), v)
	require.Equal(t, 2, b.Len())
}

func TestMemDBWriteBatchAtomicVisibility(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	require.NoError(t, db.Put([]byte("stale"), []byte("x")))

	b := NewBatch()
	b.Put([]byte("fresh"), []byte("y"))
	b.Delete([]byte("stale"))
	require.NoError(t, db.Write(b))

	_, ok, err := db.Get([]byte("stale"))
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := db.Get([]byte("fresh"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("y"), got)
}

func TestLevelDBRoundTrip(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	got, ok, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), got)

	b := NewBatch()
	b.Delete([]byte("k"))
	b.Put([]byte("k2"), []byte("v2"))
	require.NoError(t, db.Write(b))

	_, ok, err = db.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
	got, ok, err = db.Get([]byte("k2"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), got)
}
