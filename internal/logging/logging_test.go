package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfig_DefaultIsWarn(t *testing.T) {
	cfg := Config(false)
	if got := cfg.Level.Level(); got != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
	if !cfg.DisableCaller {
		t.Error("caller should be disabled outside debug mode")
	}
	if cfg.EncoderConfig.TimeKey != "" {
		t.Errorf("TimeKey = %q, want empty", cfg.EncoderConfig.TimeKey)
	}
	if len(cfg.InitialFields) != 0 {
		t.Errorf("InitialFields = %v, want none", cfg.InitialFields)
	}
}

func TestConfig_Debug(t *testing.T) {
	cfg := Config(true)
	if got := cfg.Level.Level(); got != zapcore.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
	if cfg.InitialFields["appName"] != AppName {
		t.Errorf("appName = %v, want %q", cfg.InitialFields["appName"], AppName)
	}
}

func TestNew(t *testing.T) {
	logger, err := New(false)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if logger == nil {
		t.Fatal("New returned nil logger")
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled by default")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled by default")
	}
}
