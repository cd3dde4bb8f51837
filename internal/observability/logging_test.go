package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/config"
)

// entries builds a logger writing to a temp file, runs emit, and returns the decoded JSON lines.
func entries(t *testing.T, level string, emit func(*zap.Logger)) []map[string]any {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.json")
	logger, err := buildLogger(config.LoggingConfig{Level: level, Format: "json"}, "encounter", []string{path})
	require.NoError(t, err)
	emit(logger)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNewLogger_TagsEntriesWithService(t *testing.T) {
	got := entries(t, "info", func(l *zap.Logger) {
		l.Info("encounter summary", zap.Duration("elapsed", 1500*time.Millisecond))
	})
	require.Len(t, got, 1)
	assert.Equal(t, "encounter", got[0]["service"])
	assert.Equal(t, "encounter", got[0]["logger"])
	assert.Equal(t, "encounter summary", got[0]["msg"])
	assert.Equal(t, "1.5s", got[0]["elapsed"])
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	got := entries(t, "warn", func(l *zap.Logger) {
		l.Debug("combat state changed")
		l.Info("scenario ready")
		l.Warn("attack resolution timed out")
	})
	require.Len(t, got, 1)
	assert.Equal(t, "warn", got[0]["level"])
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format}, "encounter")
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_Rejects(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"}, "encounter")
	assert.ErrorContains(t, err, "log level")
	_, err = NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, "encounter")
	assert.ErrorContains(t, err, "log format")
}

func TestSetup(t *testing.T) {
	logger, meter, err := Setup(config.Default(), "encounter")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.IsType(t, noop.Meter{}, meter)

	cfg := config.Default()
	cfg.Logging.Format = "xml"
	_, _, err = Setup(cfg, "encounter")
	assert.Error(t, err)
}
