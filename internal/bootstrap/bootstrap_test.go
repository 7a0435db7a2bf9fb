package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

func sqliteConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.Path = ":memory:"
	cfg.Database.AutoMigrate = true
	cfg.Tally.Company = "Demo"
	return cfg
}

func TestNewTallyClient(t *testing.T) {
	log := zap.NewNop()

	direct := NewTallyClient(&config.TallyConfig{URL: "http://tally:9000", Company: "Demo"}, log)
	assert.IsType(t, &tally.DirectClient{}, direct)

	bridged := NewTallyClient(&config.TallyConfig{URL: "http://tally:9000", BridgeURL: "http://bridge:3001", BridgeAPIKey: "k"}, log)
	assert.IsType(t, &tally.BridgeClient{}, bridged)
}

func TestOpenDatabase_SQLite(t *testing.T) {
	db, err := OpenDatabase(sqliteConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.NoError(t, db.Ping(context.Background()))
	assert.True(t, db.DB.Migrator().HasTable("customer"))
	assert.True(t, db.DB.Migrator().HasTable("stock_item"))
}

func TestNewSyncService_DryRunAgainstFakeTally(t *testing.T) {
	tallyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ENVELOPE><LEDGER NAME="Zeta Corp"><PARENT>Sundry Debtors</PARENT><NAME>Zeta Corp</NAME><NAME>ZC-001</NAME></LEDGER></ENVELOPE>`))
	}))
	t.Cleanup(tallyServer.Close)

	cfg := sqliteConfig()
	cfg.Tally.URL = tallyServer.URL

	db, err := OpenDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc, err := NewSyncService(SyncDeps{Config: cfg, DB: db, Logger: zap.NewNop(), DryRun: true})
	require.NoError(t, err)

	result := svc.Sync(context.Background(), tally.KindCustomers)
	require.False(t, result.Failed())
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Found)

	var count int64
	require.NoError(t, db.DB.Table("customer").Count(&count).Error)
	assert.Zero(t, count)
}

func TestNewSyncService_UnknownCaptureBackend(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Capture.Backend = "ftp"

	db, err := OpenDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewSyncService(SyncDeps{Config: cfg, DB: db, Logger: zap.NewNop()})
	assert.ErrorContains(t, err, "capture backend")
}

func TestTelemetryDisabled(t *testing.T) {
	ctx := context.Background()
	tel, err := StartTelemetry(ctx, &config.TelemetryConfig{ServiceName: "tallysync"}, nil, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tel.Tracer.IsEnabled())
	assert.False(t, tel.Profiler.IsEnabled())
	assert.NotNil(t, tel.Meter("tallysync"))
	assert.NoError(t, tel.Shutdown(ctx))
}

func TestNewSyncService_DatabaseRequiredUnlessDryRun(t *testing.T) {
	cfg := sqliteConfig()

	_, err := NewSyncService(SyncDeps{Config: cfg, Logger: zap.NewNop()})
	assert.ErrorContains(t, err, "database is required")

	_, err = NewSyncService(SyncDeps{Config: cfg, Logger: zap.NewNop(), DryRun: true})
	assert.NoError(t, err)
}
