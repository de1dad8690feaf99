package job

import (
	"context"
	"path/filepath"
	"testing"

	"x-lotto/database"
	"x-lotto/lottery"
	"x-lotto/web/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointJob(t *testing.T) {
	NewCheckpointJob().Run()

	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "lotto.db")))
	t.Cleanup(func() { _ = database.CloseDB() })
	require.NoError(t, database.KVStore{}.Set("k", []byte("v")))

	NewCheckpointJob().Run()
	v, ok, err := database.KVStore{}.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestStateSnapshotJob(t *testing.T) {
	kv := lottery.NewMemoryKV()
	state, err := lottery.NewAppState(kv, lottery.Options{MaxUniverse: 200, DefaultUniverse: 90})
	require.NoError(t, err)
	require.NoError(t, state.Load())
	draw := service.NewDrawService(context.Background(), state, service.Pacing{})
	_, err = draw.DrawNow()
	require.NoError(t, err)
	require.NoError(t, kv.Delete(lottery.SessionKey))

	NewStateSnapshotJob(draw).Run()
	assert.Equal(t, []string{lottery.SessionKey}, kv.Keys())
}
