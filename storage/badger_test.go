package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStoreRoundtrip(t *testing.T) {
	s, err := OpenMemoryBadgerStore()
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put([]byte("snapshot-1")))
	require.NoError(t, s.Put([]byte("snapshot-2")))

	got, ok, err := s.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("snapshot-2"), got)

	require.NoError(t, s.Delete())
	_, ok, err = s.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	//deleting an already empty slot stays quiet
	require.NoError(t, s.Delete())
}

func TestBadgerStoreRejectsNilRecord(t *testing.T) {
	s, err := OpenMemoryBadgerStore()
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Put(nil))
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put([]byte("durable")))
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("durable"), got)
}
