package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/opcopilot/opcopilot/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/portfolio", "GET", 200, 4*time.Millisecond)
	m.RecordRequest("/api/portfolio", "GET", 200, 2*time.Millisecond)
	m.RecordError("/api/operations/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/portfolio|GET|200"])
	assert.InDelta(t, 3.0, snap.AvgLatencyMS["/api/portfolio|GET|200"], 0.001)
	assert.Equal(t, int64(1), snap.Errors["/api/operations/:id|GET|NOT_FOUND"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "bogus"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "debug", Format: "console", Service: "opcopilot", Development: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
