// Package syncapp orchestrates one pass of pulling master records out of
// Tally and inserting the ones the database does not have yet.
package syncapp

import (
	"context"
	"time"

	"github.com/tallysync/backend/internal/infrastructure/tally"
)

// Outcome counts what happened to the records of a run
type Outcome struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Add sums two outcomes
func (o Outcome) Add(other Outcome) Outcome {
	return Outcome{
		Saved:      o.Saved + other.Saved,
		Duplicates: o.Duplicates + other.Duplicates,
		Errors:     o.Errors + other.Errors,
	}
}

// Failure describes a run that could not obtain the export
type Failure struct {
	Cause   tally.Cause `json:"cause"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Hint    string      `json:"hint"`
}

// Result is the summary of one sync run for a kind
type Result struct {
	RunID     string        `json:"run_id"`
	Kind      tally.Kind    `json:"kind"`
	Found     int           `json:"found"`
	Outcome                 // inlined as saved, duplicates, errors
	Failure   *Failure      `json:"failure,omitempty"`
	Decoder   string        `json:"decoder,omitempty"`
	Capture   string        `json:"capture,omitempty"`
	DryRun    bool          `json:"dry_run,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Failed reports whether the run stopped on a transport failure
func (r Result) Failed() bool {
	return r.Failure != nil
}

// AllResult is the merged summary of a customers run followed by an items run
type AllResult struct {
	Customers Result  `json:"customers"`
	Items     Result  `json:"items"`
	Found     int     `json:"found"`
	Total     Outcome `json:"total"`
}

// Failed reports whether either run stopped on a transport failure
func (r AllResult) Failed() bool {
	return r.Customers.Failed() || r.Items.Failed()
}

// StatusStore keeps the latest result of each kind
type StatusStore interface {
	Save(ctx context.Context, result Result) error
	// Last returns nil and no error when the kind never ran
	Last(ctx context.Context, kind tally.Kind) (*Result, error)
}
