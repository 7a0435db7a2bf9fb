package scheduler

import "errors"

var (
	// ErrSyncInProgress is returned when a run is requested while another is still going
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
