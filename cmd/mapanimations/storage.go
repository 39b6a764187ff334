package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/logging"
	"github.com/nixta/mapanimations/internal/storage"
	influxstorage "github.com/nixta/mapanimations/internal/storage/influx"
	"github.com/nixta/mapanimations/internal/storage/memory"
	pgstorage "github.com/nixta/mapanimations/internal/storage/postgres"
	sqlitestorage "github.com/nixta/mapanimations/internal/storage/sqlite"
	wsstorage "github.com/nixta/mapanimations/internal/storage/websocket"
)

func createStorageBackend(storageCfg config.StorageConfig, logs *logging.SlogManager, start time.Time) (storage.Backend, error) {
	logger := logs.Logger()

	switch strings.ToLower(storageCfg.Type) {
	case "postgres":
		logger.Info("Postgres storage backend selected", "host", storageCfg.Postgres.Host, "database", storageCfg.Postgres.Database)
		return pgstorage.New(storageCfg.Postgres, logs.Component("postgres")), nil

	case "sqlite":
		sqliteCfg := storageCfg.SQLite
		if sqliteCfg.Path == "" {
			sqliteCfg.Path = filepath.Join(storageCfg.Memory.OutputDir, fmt.Sprintf("%s_%s.db", AppName, start.Format("20060102_150405")))
		}
		backend, err := sqlitestorage.New(sqliteCfg, logs.Component("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend selected", "path", sqliteCfg.Path, "dumpInterval", sqliteCfg.DumpInterval)
		return backend, nil

	case "websocket":
		wsCfg := storageCfg.WebSocket
		wsCfg.URL = httpToWS(wsCfg.URL)
		logger.Info("WebSocket storage backend selected", "url", wsCfg.URL)
		return wsstorage.New(wsCfg, logs.Component("websocket")), nil

	case "influx":
		logger.Info("InfluxDB storage backend selected", "url", influxstorage.ServerURL(storageCfg.Influx), "bucket", storageCfg.Influx.Bucket)
		return influxstorage.New(storageCfg.Influx, logs.Component("influx")), nil

	case "memory", "":
		logger.Info("Memory storage backend selected", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
