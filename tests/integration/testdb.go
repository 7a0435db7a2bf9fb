//go:build integration

// Package integration runs tallysync against a real PostgreSQL started with
// testcontainers and migrated with the SQL migrations.
package integration

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/migration"
	"github.com/tallysync/backend/internal/infrastructure/persistence"
)

// TestDB is a migrated database in its own container
type TestDB struct {
	*persistence.Database
	SQL *sql.DB
	DSN string
}

// NewTestDB starts a PostgreSQL container and applies every migration
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tallysync_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrate(t, sqlDB)

	return &TestDB{
		Database: &persistence.Database{DB: db, Driver: config.DriverPostgres},
		SQL:      sqlDB,
		DSN:      dsn,
	}
}

func migrate(t *testing.T, sqlDB *sql.DB) {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..", "migrations")

	m, err := migration.New(sqlDB, config.DriverPostgres, migration.Dir(root, config.DriverPostgres), zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, tdb.DB.Table(table).Count(&n).Error)
	return n
}
