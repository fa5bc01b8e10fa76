package hostfuncs

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}

func (s *mapStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.values, key)
	return nil
}

func (s *mapStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestPerformSession_RoundTrip(t *testing.T) {
	store := newMapStore()

	got := PerformSessionGet(store, SessionGetRequest{Key: "token"})
	assert.Nil(t, got.Error)
	assert.False(t, got.Found)

	set := PerformSessionSet(store, SessionSetRequest{Key: "token", Value: "abc"})
	assert.True(t, set.OK)

	got = PerformSessionGet(store, SessionGetRequest{Key: "token"})
	assert.True(t, got.Found)
	assert.Equal(t, "abc", got.Value)

	has := PerformSessionHas(store, SessionKeyRequest{Key: "token"})
	assert.True(t, has.OK)
	assert.True(t, has.Found)

	removed := PerformSessionRemove(store, SessionKeyRequest{Key: "token"})
	assert.True(t, removed.OK)

	has = PerformSessionHas(store, SessionKeyRequest{Key: "token"})
	assert.False(t, has.Found)
}

func TestPerformSession_EmptyKey(t *testing.T) {
	store := newMapStore()

	assert.Equal(t, "VALIDATION_ERROR", PerformSessionGet(store, SessionGetRequest{}).Error.Error)
	assert.Equal(t, "VALIDATION_ERROR", PerformSessionSet(store, SessionSetRequest{Value: "v"}).Error.Error)
	assert.Equal(t, "VALIDATION_ERROR", PerformSessionHas(store, SessionKeyRequest{}).Error.Error)
	assert.Equal(t, "VALIDATION_ERROR", PerformSessionRemove(store, SessionKeyRequest{}).Error.Error)
	assert.Empty(t, store.values)
}

func TestPerformSession_StoreFailure(t *testing.T) {
	store := newMapStore()
	store.err = errors.New("disk full")

	resp := PerformSessionSet(store, SessionSetRequest{Key: "k", Value: "v"})
	require.NotNil(t, resp.Error)
	assert.False(t, resp.OK)
	assert.Equal(t, 500, resp.Error.Code)
	assert.Equal(t, "disk full", resp.Error.Message)
}

func TestSessionBundle_ThroughRegistry(t *testing.T) {
	store := newMapStore()
	reg, err := NewRegistry(WithBundle(SessionBundle(store)))
	require.NoError(t, err)
	assert.Equal(t, []string{"session_get", "session_has", "session_remove", "session_set"}, reg.Names())

	ctx := context.Background()
	out, err := reg.Invoke(ctx, "session_set", []byte(`{"key":"user","value":"ada"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(out))

	out, err = reg.Invoke(ctx, "session_get", []byte(`{"key":"user"}`))
	require.NoError(t, err)

	var resp SessionGetResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, "ada", resp.Value)
}
