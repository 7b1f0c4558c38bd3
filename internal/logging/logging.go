// Package logging builds the zap loggers used by guard.
//
// Diagnostics go to stderr through a console encoder so they interleave
// cleanly with the interactive output on stdout. The default level is warn:
// only skipped files, large files and failures are shown. --debug lowers the
// level, enables caller and timestamp fields and attaches the app name and
// version to every entry.
package logging

import (
	"log"
	"os"
	"strings"

	"github.com/dshills/guard/internal/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// AppName is attached to every debug log entry.
const AppName = "guard"

// New builds a console logger writing to stderr.
func New(debug bool) (*zap.Logger, error) {
	cfg := Config(debug)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}
	return logger, nil
}

// Config returns the zap configuration used by New.
func Config(debug bool) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.InitialFields = map[string]interface{}{
			"appName":    AppName,
			"appVersion": version.Version,
		}
		return cfg
	}

	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.DisableCaller = true
	cfg.EncoderConfig.TimeKey = ""
	return cfg
}

// Sync flushes the logger. Syncing a terminal or pipe returns "invalid
// argument" on some platforms, so stderr is only synced when it is a
// terminal or a regular file and that specific error is ignored.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) && !isRegularFile(os.Stderr) {
		return
	}
	if err := logger.Sync(); err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "invalid argument") &&
			!strings.Contains(strings.ToLower(err.Error()), "inappropriate ioctl") {
			log.Printf("logger sync failed: %v", err)
		}
	}
}

func isRegularFile(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
