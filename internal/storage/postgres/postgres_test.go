package postgres

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/storage"
	"github.com/nixta/mapanimations/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func TestInit_ConnectError(t *testing.T) {
	b := New(config.DBConfig{Host: "nowhere"}, nil)
	b.open = func(config.DBConfig) (*gorm.DB, error) {
		return nil, errors.New("refused")
	}

	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
	assert.NoError(t, b.Close(), "close before a successful init is a no-op")
}

func TestInit_UsesOpenedDB(t *testing.T) {
	b := New(config.DBConfig{Host: "db", Database: "mapanimations"}, nil)
	b.open = func(config.DBConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:pgstandin?mode=memory&cache=shared"), &gorm.Config{})
	}

	require.NoError(t, b.Init())
	s := &core.Session{Scenario: "planes"}
	require.NoError(t, b.StartSession(s))
	assert.NotZero(t, s.ID)
	require.NoError(t, b.RecordMarkerState(&core.MarkerState{GraphicID: 1}))
	require.NoError(t, b.EndSession())
	assert.Equal(t, 0, b.Pending())

	require.NoError(t, b.Close())
}
