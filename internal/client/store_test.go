package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "inventoryctl.json")

	s := NewFileStore(path)
	_, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "abc"))
	require.NoError(t, s.Set(KeyRefreshToken, "def"))

	reopened := NewFileStore(path)
	v, ok, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, reopened.Delete(KeyToken, KeyRefreshToken))
	_, ok, _ = s.Get(KeyRefreshToken)
	assert.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptedFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	s := NewFileStore(path)
	_, ok, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyToken, "abc"))
	v, _, _ := s.Get(KeyToken)
	assert.Equal(t, "abc", v)
}

func TestSession_CorruptedIdentityDiscarded(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyUser, "{broken"))
	s := NewSession(store, nil)

	_, ok := s.Identity()
	assert.False(t, ok)
	_, stillThere, _ := store.Get(KeyUser)
	assert.False(t, stillThere)
}

type readOnlyStore struct {
	*MemoryStore
}

func (readOnlyStore) Delete(...string) error { return errors.New("read-only medium") }

func TestSession_CorruptedIdentityDeleteFailureLogged(t *testing.T) {
	store := readOnlyStore{NewMemoryStore()}
	require.NoError(t, store.Set(KeyUser, "{broken"))
	core, logs := observer.New(zap.WarnLevel)
	s := NewSession(store, zap.New(core))

	_, ok := s.Identity()

	assert.False(t, ok)
	entries := logs.FilterMessage("delete corrupted identity").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "read-only medium", entries[0].ContextMap()["error"])
}

func TestSession_Present(t *testing.T) {
	store := NewMemoryStore()
	s := NewSession(store, nil)
	assert.False(t, s.Present())

	require.NoError(t, store.Set(KeyRefreshToken, "refresh-1"))
	assert.True(t, s.Present())

	require.NoError(t, s.Clear())
	assert.False(t, s.Present())
}
