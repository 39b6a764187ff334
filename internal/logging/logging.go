package logging

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// NewRotatingFile returns a size-rotated log writer for path. Debug runs
// produce far more output, so they get a larger file before rotation.
func NewRotatingFile(path, level string) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
	if parseLevel(level) == slog.LevelDebug {
		w.MaxSize = 256
	}
	return w
}
