package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add customer table", "add_customer_table"},
		{"Add-Customer-Table", "add_customer_table"},
		{"ADD_STOCK_ITEM", "add_stock_item"},
		{"add__admins__table", "add_admins_table"},
		{"Add Index 123", "add_index_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "postgres")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mf, err := createAt(dir, "Add customer GSTIN", "track gst numbers", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304050607", mf.Version)
	assert.Equal(t, "add_customer_gstin", mf.Name)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_customer_gstin.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_customer_gstin.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- add_customer_gstin (up)")
	assert.Contains(t, string(up), "-- track gst numbers")
	assert.Contains(t, string(up), "2026-03-04T05:06:07Z")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(down)")

	t.Run("same second collides instead of overwriting", func(t *testing.T) {
		_, err := createAt(dir, "add customer gstin", "", now)
		assert.Error(t, err)
	})

	t.Run("name without usable characters", func(t *testing.T) {
		_, err := createAt(dir, "!!!", "", now)
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000002_stock_item.up.sql",
		"000002_stock_item.down.sql",
		"000001_customer.up.sql",
		"000001_customer.down.sql",
		"000003_admins.up.sql",
		"000003_admins.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_customer", "000002_stock_item", "000003_admins"}, migrations)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestDirAndSQLDriverName(t *testing.T) {
	assert.Equal(t, filepath.Join("migrations", "postgres"), Dir("migrations", ""))
	assert.Equal(t, filepath.Join("migrations", "mysql"), Dir("migrations", "mysql"))
	assert.Equal(t, "mysql", SQLDriverName("mysql"))
	assert.Equal(t, "postgres", SQLDriverName("postgres"))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(nil, "sqlite", t.TempDir(), nil)
	assert.ErrorContains(t, err, "not supported")
}
