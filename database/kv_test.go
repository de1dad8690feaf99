package database

import (
	"path/filepath"
	"testing"

	"x-lotto/database/model"
	"x-lotto/lottery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ lottery.KeyValueStore = KVStore{}

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "nested", "test.db")))
	t.Cleanup(func() {
		_ = CloseDB()
	})
}

func TestKVStore_SetGetDelete(t *testing.T) {
	setupDB(t)
	kv := KVStore{}

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("a", []byte(`[1,2]`)))
	require.NoError(t, kv.Set("a", []byte(`[3]`)))
	require.NoError(t, kv.Set("b", []byte(`{}`)))

	v, ok, err := kv.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[3]`, string(v))

	require.NoError(t, kv.Delete("a", "b", "never-set"))
	for _, k := range []string{"a", "b"} {
		_, ok, err := kv.Get(k)
		require.NoError(t, err)
		assert.False(t, ok, k)
	}

	require.NoError(t, kv.Delete())
	require.NoError(t, Checkpoint())
}

func TestKVStore_NotInitialized(t *testing.T) {
	require.NoError(t, CloseDB())
	kv := KVStore{}
	_, _, err := kv.Get("a")
	assert.Error(t, err)
	assert.Error(t, kv.Set("a", nil))
	assert.Error(t, kv.Delete("a"))
	assert.ErrorIs(t, Checkpoint(), errNotInitialized)
}

func TestKVStore_BacksAppState(t *testing.T) {
	setupDB(t)
	opts := lottery.Options{
		MaxUniverse:     200,
		DefaultUniverse: 90,
		Retention:       10,
		Source:          lottery.NewSeededSource(1),
	}

	a, err := lottery.NewAppState(KVStore{}, opts)
	require.NoError(t, err)
	require.NoError(t, a.Load())
	for i := 0; i < 3; i++ {
		_, err := a.Draw()
		require.NoError(t, err)
	}
	_, _, err = a.Reset()
	require.NoError(t, err)
	_, err = a.Draw()
	require.NoError(t, err)
	want := a.Snapshot()

	b, err := lottery.NewAppState(KVStore{}, opts)
	require.NoError(t, err)
	require.NoError(t, b.Load())
	got := b.Snapshot()
	assert.Equal(t, want.Session, got.Session)
	require.Len(t, got.History, 1)
	assert.Equal(t, want.History[0].ID, got.History[0].ID)
	assert.Equal(t, want.History[0].Numbers, got.History[0].Numbers)

	require.NoError(t, b.ClearAll())
	var count int64
	require.NoError(t, GetDB().Model(&model.KVEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}
