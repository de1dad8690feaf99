package web

import (
	"context"
	"io"
	"net/http"
	"testing"

	"x-lotto/config"
	"x-lotto/lottery"
	"x-lotto/web/service"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackToLocalhost(t *testing.T) {
	assert.Equal(t, "127.0.0.1", fallbackToLocalhost(""))
	assert.Equal(t, "127.0.0.1", fallbackToLocalhost("0.0.0.0"))
	assert.Equal(t, "127.0.0.1", fallbackToLocalhost("example.org"))
	assert.Equal(t, "::1", fallbackToLocalhost("::"))
}

func TestServer_StartStop(t *testing.T) {
	kv := lottery.NewMemoryKV()
	state, err := lottery.NewAppState(kv, lottery.Options{MaxUniverse: 5000, DefaultUniverse: 90})
	require.NoError(t, err)
	require.NoError(t, state.Load())
	draw := service.NewDrawService(context.Background(), state, service.Pacing{})

	settings := config.DefaultSettings()
	settings.Listen = "0.0.0.0"
	settings.Port = 0
	s := NewServer(settings, kv, draw)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	addr := s.Addr()
	require.NotNil(t, addr)
	assert.Contains(t, addr.String(), "127.0.0.1:")
	assert.Len(t, s.GetCron().Entries(), 3, "checkpoint, snapshot and status refresh")

	resp, err := http.Get("http://" + addr.String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	var index map[string]any
	require.NoError(t, json.Unmarshal(body, &index))
	assert.Equal(t, config.GetName(), index["name"])

	resp, err = http.Post("http://"+addr.String()+"/panel/api/draw/now", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, draw.Status().Session.DrawnNumbers, 1)

	_, found, err := kv.Get("panel-session-secret")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.Stop())
}
