package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/logging"
	influxstorage "github.com/nixta/mapanimations/internal/storage/influx"
	"github.com/nixta/mapanimations/internal/storage/memory"
	pgstorage "github.com/nixta/mapanimations/internal/storage/postgres"
	sqlitestorage "github.com/nixta/mapanimations/internal/storage/sqlite"
	wsstorage "github.com/nixta/mapanimations/internal/storage/websocket"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestParseFlags_BindsConfigKeys(t *testing.T) {
	resetViper(t)
	config.SetDefaults()

	opts, err := parseFlags([]string{"--scenario", "routes", "--origin", "jfk", "--storage", "sqlite", "--log-format", "Console", "-c", "/etc/mapanimations"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "/etc/mapanimations", opts.configDir)
	assert.Equal(t, logFormatConsole, opts.logFormat)
	assert.Equal(t, "routes", viper.GetString("demo.scenario"))
	assert.Equal(t, "jfk", viper.GetString("demo.origin"))
	assert.Equal(t, "sqlite", viper.GetString("storage.type"))
}

func TestParseFlags_UnsetFlagsKeepDefaults(t *testing.T) {
	resetViper(t)
	config.SetDefaults()
	viper.Set("demo.origin", "cdg")

	_, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "cdg", viper.GetString("demo.origin"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
}

func TestParseFlags_Errors(t *testing.T) {
	resetViper(t)
	_, err := parseFlags([]string{"--log-format", "json"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = parseFlags([]string{"--no-such-flag"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestHTTPToWS(t *testing.T) {
	assert.Equal(t, "ws://localhost:5000/ingest", httpToWS("http://localhost:5000/ingest/"))
	assert.Equal(t, "wss://example.com", httpToWS("https://example.com"))
	assert.Equal(t, "ws://already", httpToWS("ws://already"))
}

func TestCreateStorageBackend(t *testing.T) {
	logs := logging.NewSlogManager()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := config.StorageConfig{
		Memory:    config.MemoryConfig{OutputDir: t.TempDir()},
		WebSocket: config.WebSocketConfig{URL: "http://localhost:1/ingest"},
		Influx:    config.InfluxConfig{Host: "localhost", Port: "8086", Protocol: "http", Bucket: "frames"},
	}

	tests := []struct {
		storageType string
		check       func(t *testing.T, b any)
	}{
		{"", func(t *testing.T, b any) { assert.IsType(t, &memory.Backend{}, b) }},
		{"memory", func(t *testing.T, b any) { assert.IsType(t, &memory.Backend{}, b) }},
		{"SQLite", func(t *testing.T, b any) { assert.IsType(t, &sqlitestorage.Backend{}, b) }},
		{"postgres", func(t *testing.T, b any) { assert.IsType(t, &pgstorage.Backend{}, b) }},
		{"websocket", func(t *testing.T, b any) { assert.IsType(t, &wsstorage.Backend{}, b) }},
		{"influx", func(t *testing.T, b any) { assert.IsType(t, &influxstorage.Backend{}, b) }},
	}
	for _, tt := range tests {
		t.Run(tt.storageType, func(t *testing.T) {
			cfg := base
			cfg.Type = tt.storageType
			b, err := createStorageBackend(cfg, logs, start)
			require.NoError(t, err)
			tt.check(t, b)
		})
	}

	cfg := base
	cfg.Type = "cassandra"
	_, err := createStorageBackend(cfg, logs, start)
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	resetViper(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, &out))
	assert.Contains(t, out.String(), AppName+" "+Version)
}

func TestRun_PlanesToMemory(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	recordings := filepath.Join(dir, "recordings")
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"animation": {"fps": 60},
		"demo": {"maxDestinations": 1, "maxStartDelay": "0s", "speedStep": 1000000000, "timeout": "30s"},
		"storage": {"memory": {"outputDir": "` + filepath.ToSlash(recordings) + `", "compressOutput": false}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), []string{"-c", dir, "--scenario", "planes"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "scenario finished")
	files, err := filepath.Glob(filepath.Join(recordings, "*.json"))
	require.NoError(t, err)
	assert.Len(t, files, 1)

	logs, err := filepath.Glob(filepath.Join(dir, "logs", AppName+".*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestRun_CancelledContextStops(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	cfg := `{
		"logsDir": "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `",
		"demo": {"maxDestinations": 2},
		"storage": {"memory": {"outputDir": ""}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"-c", dir}, &out))
	assert.Contains(t, out.String(), "stopped=true")
}
