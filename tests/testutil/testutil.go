// Package testutil provides helpers shared by the tallysync test suites:
// Tally fixtures, a fake Tally XML server and HTTP request helpers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// FixturePath returns the path of a Tally export fixture under
// internal/infrastructure/tally/testdata
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(root, "internal", "infrastructure", "tally", "testdata", name)
}

// Fixture reads a Tally export fixture
func Fixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(FixturePath(name))
	require.NoError(t, err, "Failed to read fixture %s", name)
	return raw
}

// ContextWithTimeout creates a context that is cancelled when the test ends
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
