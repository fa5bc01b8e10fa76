package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nthnn/ura/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store ports.SessionStore) {
	t.Helper()

	_, found, err := store.Get("token")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set("token", "abc"))
	require.NoError(t, store.Set("user", "ada"))

	v, found, err := store.Get("token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", v)

	require.NoError(t, store.Set("token", "def"))
	v, _, err = store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"token", "user"}, keys)

	require.NoError(t, store.Remove("token"))
	require.NoError(t, store.Remove("never-set"))

	_, found, err = store.Get("token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%02d", i)
			assert.NoError(t, store.Set(key, key))
			_, _, err := store.Get(key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 20)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	exerciseStore(t, NewFileStore(WithPath(path)))
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")

	require.NoError(t, NewFileStore(WithPath(path)).Set("theme", "dark"))

	reopened := NewFileStore(WithPath(path))
	v, found, err := reopened.Get("theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", v)
	assert.Equal(t, path, reopened.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, _, err := NewFileStore(WithPath(path)).Get("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse session store")
}

func TestFileStore_EmptyPathKeepsDefault(t *testing.T) {
	store := NewFileStore(WithPath(""))
	assert.Equal(t, filepath.Join(os.TempDir(), "ura", "session.yaml"), store.Path())
}
