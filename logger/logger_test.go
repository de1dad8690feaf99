package logger

import (
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.DEBUG, ParseLevel("debug"))
	assert.Equal(t, logging.WARNING, ParseLevel("WARNING"))
	assert.Equal(t, logging.INFO, ParseLevel("nonsense"))
}

func TestGetLogs_FiltersByLevelAndKeepsOrder(t *testing.T) {
	Info("getlogs-first")
	Warningf("getlogs-%s", "second")
	Debug("getlogs-debug")
	Errorf("getlogs-%d", 3)

	logs := GetLogs(3, "WARNING")
	require.Len(t, logs, 2, "info and debug lines are below WARNING")
	assert.True(t, strings.HasSuffix(logs[0], "getlogs-second"))
	assert.True(t, strings.HasSuffix(logs[1], "getlogs-3"))

	last := GetLogs(1, "DEBUG")
	require.Len(t, last, 1)
	assert.True(t, strings.HasSuffix(last[0], "getlogs-3"))
}
