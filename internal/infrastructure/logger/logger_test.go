package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
	assert.Equal(t, 100, cfg.MaxSizeMB)
}

func TestProductionConfig(t *testing.T) {
	cfg := ProductionConfig()

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "production config", cfg: ProductionConfig()},
		{name: "debug level", cfg: &Config{Level: "debug", Format: "console", Output: "stdout"}},
		{name: "stderr json", cfg: &Config{Level: "info", Format: "json", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	observed, logs := observer.New(zapcore.InfoLevel)

	logger, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, observed)
	require.NoError(t, err)

	logger.Info("stock updated", zap.String("product_id", "p-1"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "stock updated", logs.All()[0].Message)
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			logger, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.level))
		})
	}
}

func TestWithAndNamed(t *testing.T) {
	base := zap.NewNop()

	assert.NotNil(t, With(base, zap.String("k", "v")))
	assert.NotNil(t, Named(base, "sales"))
}

func TestCreateWriter_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = path

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Info("sale registered", zap.String("sale_id", "s-1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "sale registered", entry["msg"])
	assert.Equal(t, "s-1", entry["sale_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	cfg := ProductionConfig()
	cfg.TimeFormat = DefaultConfig().TimeFormat

	core := zapcore.NewCore(createEncoder(cfg), zapcore.AddSync(&buf), zapcore.DebugLevel)
	zap.New(core).Warn("insufficient stock", zap.Int64("available", 5), zap.Int64("requested", 10))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, 5, entry["available"])
	assert.EqualValues(t, 10, entry["requested"])
}
