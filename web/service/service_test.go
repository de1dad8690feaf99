package service

import (
	"bytes"
	"testing"
	"time"

	"x-lotto/config"
	"x-lotto/logger"
	"x-lotto/lottery"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerService_GetStatus(t *testing.T) {
	draw, _ := newTestDrawService(t, Pacing{})
	_, err := draw.DrawNow()
	require.NoError(t, err)

	s := NewServerService(draw)
	status := s.GetStatus(nil)
	require.NotNil(t, status)
	assert.Equal(t, config.GetName(), status.AppStats.Name)
	assert.NotZero(t, status.AppStats.Mem)
	assert.NotZero(t, status.LogicalPro)
	assert.Equal(t, 90, status.Draw.UniverseSize)
	assert.Equal(t, 1, status.Draw.Drawn)
}

func TestServerService_GetLogs(t *testing.T) {
	logger.InitLogger(logging.DEBUG)
	logger.Info("server service log line")

	s := NewServerService(nil)
	lines := s.GetLogs("10", "info")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[len(lines)-1], "server service log line")

	assert.Empty(t, s.GetLogs("abc", "info"))
	assert.Empty(t, s.GetLogs("-1", "info"))
}

func TestSettingService_GetSecretIsStable(t *testing.T) {
	kv := lottery.NewMemoryKV()
	s := NewSettingService(nil, kv)

	a, err := s.GetSecret()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	b, err := s.GetSecret()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.NoError(t, kv.Set(secretKey, []byte("zz")))
	c, err := s.GetSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSettingService_TimeLocation(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Jobs.TimeZone = "UTC"
	s := NewSettingService(settings, nil)
	loc, err := s.GetTimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	settings.Jobs.TimeZone = "Not/AZone"
	loc, err = s.GetTimeLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestShareService_QRCode(t *testing.T) {
	draw, _ := newTestDrawService(t, Pacing{})
	for i := 0; i < 5; i++ {
		_, err := draw.DrawNow()
		require.NoError(t, err)
	}
	entry, archived, err := draw.Reset()
	require.NoError(t, err)
	require.True(t, archived)

	s := NewShareService(draw)
	png, err := s.QRCode(entry.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = s.QRCode("missing", 128)
	assert.ErrorIs(t, err, lottery.ErrEntryNotFound)
}

func TestEntryText(t *testing.T) {
	e := lottery.HistoryEntry{
		ID:        "x",
		Numbers:   []int{7, 42, 13},
		Timestamp: time.Date(2025, 5, 2, 10, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, config.GetName()+" 2025-05-02 10:30:00Z (3): 7, 42, 13", EntryText(e))
}
