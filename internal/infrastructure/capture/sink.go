// Package capture keeps copies of raw ERP export responses for offline debugging.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Sink stores one raw response and returns where it was written
type Sink interface {
	Save(ctx context.Context, kind, label string, raw []byte) (location string, err error)
}

// NopSink discards captures
type NopSink struct{}

// Save does nothing
func (NopSink) Save(context.Context, string, string, []byte) (string, error) {
	return "", nil
}

// objectName is the file or key name of a capture taken at t
func objectName(label string, t time.Time) string {
	return fmt.Sprintf("debug-%s-%d.xml", label, t.UnixMilli())
}

// NewSink builds the sink selected by the capture backend
func NewSink(cfg *config.CaptureConfig, storage *config.StorageConfig, logger *zap.Logger) (Sink, error) {
	switch cfg.Backend {
	case config.CaptureFile:
		return NewFileSink(cfg.Dir), nil
	case config.CaptureS3:
		return NewS3Sink(storage, cfg.Prefix, WithLogger(logger))
	case config.CaptureNone, "":
		return NopSink{}, nil
	}
	return nil, fmt.Errorf("unknown capture backend %q", cfg.Backend)
}
