// Package postgres implements the storage.Backend interface on PostgreSQL
// through the GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/database"
	gormstorage "github.com/nixta/mapanimations/internal/storage/gorm"
	"gorm.io/gorm"
)

// maxOpenConns bounds the pool; the writer goroutine is the only heavy user.
const maxOpenConns = 10

// Backend is the GORM backend over a Postgres connection opened on Init.
type Backend struct {
	*gormstorage.Backend
	cfg    config.DBConfig
	logger *slog.Logger
	open   func(config.DBConfig) (*gorm.DB, error)
}

// New creates a Postgres backend. No connection is made until Init.
func New(cfg config.DBConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:    cfg,
		logger: logger,
		open:   database.OpenPostgres,
	}
}

// Init connects, validates the connection and initializes the GORM backend.
func (b *Backend) Init() error {
	db, err := b.open(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	b.logger.Info("Connected to database", "host", b.cfg.Host, "database", b.cfg.Database)
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.logger})
	return b.Backend.Init()
}

// Close closes the GORM backend and the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
