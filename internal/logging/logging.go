// Package logging provides the ambient structured logger shared by every
// component. It mirrors the teacher's own debug-gated Logf call pattern
// (internal/debug.Logf, invoked throughout its command layer) but backs the
// file sink with log/slog plus the teacher's own rotating-file dependency,
// lumberjack, instead of a hand-rolled writer.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wrkdir/omni/internal/xdg"
)

var (
	once   sync.Once
	logger *slog.Logger
)

func debugEnabled() bool {
	v := os.Getenv("OMNI_DEBUG")
	return v != "" && v != "0" && v != "false"
}

// get lazily builds the shared logger on first use so packages can log
// from init()-adjacent code without an explicit Setup call.
func get() *slog.Logger {
	once.Do(func() {
		level := slog.LevelInfo
		if debugEnabled() {
			level = slog.LevelDebug
		}

		logPath := filepath.Join(xdg.StateHome(), "omni.log")
		_ = xdg.EnsureDir(filepath.Dir(logPath))

		fileWriter := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}

		handler := slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	})
	return logger
}

// Debugf logs at debug level to the rotating file sink only.
func Debugf(format string, args ...any) {
	get().Debug(sprintf(format, args...))
}

// Logf logs at info level to the rotating file sink only.
func Logf(format string, args ...any) {
	get().Info(sprintf(format, args...))
}

// Warnf logs at warn level to both the file sink and stderr, matching the
// teacher's pattern of always surfacing warnings interactively.
func Warnf(format string, args ...any) {
	msg := sprintf(format, args...)
	get().Warn(msg)
	os.Stderr.WriteString("warning: " + msg + "\n")
}

// Errorf logs at error level to both sinks.
func Errorf(format string, args ...any) {
	msg := sprintf(format, args...)
	get().Error(msg)
	os.Stderr.WriteString("error: " + msg + "\n")
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
