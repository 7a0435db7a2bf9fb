package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileSink writes captures into a local directory
type FileSink struct {
	dir string
	now func() time.Time
}

// NewFileSink creates a FileSink rooted at dir; "" means the working directory
func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "."
	}
	return &FileSink{dir: dir, now: time.Now}
}

// Save writes raw to debug-<label>-<unixms>.xml
func (s *FileSink) Save(ctx context.Context, kind, label string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create capture dir: %w", err)
	}
	path := filepath.Join(s.dir, objectName(label, s.now()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s capture: %w", kind, err)
	}
	return path, nil
}
