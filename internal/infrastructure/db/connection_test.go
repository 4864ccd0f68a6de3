package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 10, config.MaxOpenConns)
	assert.Equal(t, 5, config.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, config.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, config.ConnMaxIdleTime)
	assert.Equal(t, 30*time.Second, config.QueryTimeout)
	assert.False(t, config.Enabled)
}

func TestNewManager_Disabled(t *testing.T) {
	manager, err := NewManager(DefaultConfig())
	require.NoError(t, err)

	assert.False(t, manager.IsEnabled())
	assert.Nil(t, manager.Repository())
	assert.Nil(t, manager.DB())
	assert.NoError(t, manager.Close())

	health := manager.Health().Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Contains(t, health.Errors, "Database persistence disabled")
}

func TestNewManager_EnabledRequiresDSN(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true

	_, err := NewManager(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}

func TestHealthChecker_Enabled(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	checker := &healthChecker{enabled: true, db: sqlxDB, timeout: 5 * time.Second}

	mock.ExpectPing()

	health := checker.Health(context.Background())
	assert.True(t, health.Healthy)
	assert.Empty(t, health.Errors)
	assert.Contains(t, health.ConnectionPool, "open")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthChecker_PingFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	sqlxDB := sqlx.NewDb(mockDB, "postgres")
	checker := &healthChecker{enabled: true, db: sqlxDB, timeout: 5 * time.Second}

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))

	health := checker.Health(context.Background())
	assert.False(t, health.Healthy)
	require.Len(t, health.Errors, 1)
	assert.Contains(t, health.Errors[0], "ping failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthChecker_DisabledStats(t *testing.T) {
	checker := &healthChecker{enabled: false}

	assert.NoError(t, checker.Ping(context.Background()))

	stats := checker.Stats(context.Background())
	assert.False(t, stats["enabled"].(bool))
	assert.Equal(t, "disabled", stats["status"])
}
