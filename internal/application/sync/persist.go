package syncapp

import (
	"context"

	"go.uber.org/zap"
)

// Record is an imported record with a natural key
type Record interface {
	NaturalKey() string
	DisplayName() string
}

// Inserter writes a record unless its natural key already exists
type Inserter[T Record] interface {
	InsertIfAbsent(ctx context.Context, record T) (bool, error)
}

// Persist inserts every keyed record one at a time. Records without a key
// are logged and left out of the counts; a failed insert is counted and the
// loop moves on. There is no surrounding transaction.
func Persist[T Record](ctx context.Context, repo Inserter[T], records []T, log *zap.Logger) Outcome {
	var out Outcome
	for _, r := range records {
		key := r.NaturalKey()
		if key == "" {
			log.Info("Skipping record without code", zap.String("name", r.DisplayName()))
			continue
		}

		saved, err := repo.InsertIfAbsent(ctx, r)
		switch {
		case err != nil:
			out.Errors++
			log.Error("Error saving record", zap.String("code", key), zap.String("name", r.DisplayName()), zap.Error(err))
		case saved:
			out.Saved++
			log.Debug("Saved record", zap.String("code", key))
		default:
			out.Duplicates++
			log.Debug("Record already exists", zap.String("code", key))
		}
	}
	return out
}
