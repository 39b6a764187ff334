package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name          string
		logsDir       string
		appName string
		want          string
	}{
		{
			name:          "basic path",
			logsDir:       "logs",
			appName: "mapanimations",
			want:          filepath.Join("logs", "mapanimations.20260212_213836.log"),
		},
		{
			name:          "relative path with dot",
			logsDir:       "./logs",
			appName: "mapanimations",
			want:          filepath.Join(".", "logs", "mapanimations.20260212_213836.log"),
		},
		{
			name:          "absolute path",
			logsDir:       filepath.Join("/var", "log", "mapanimations"),
			appName: "mapanimations",
			want:          filepath.Join("/var", "log", "mapanimations", "mapanimations.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapanimations.log")

	w := NewRotatingFile(path, "info")
	t.Cleanup(func() { w.Close() })
	assert.Equal(t, path, w.Filename)
	assert.Equal(t, 32, w.MaxSize)
	assert.True(t, w.Compress)

	_, err := w.Write([]byte("line\n"))
	assert.NoError(t, err)
	assert.FileExists(t, path)
}

func TestNewRotatingFile_DebugIsLarger(t *testing.T) {
	w := NewRotatingFile(filepath.Join(t.TempDir(), "debug.log"), "debug")
	assert.Equal(t, 256, w.MaxSize)
}
