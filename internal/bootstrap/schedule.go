package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/scheduler"
)

// AllSyncer runs a sync of every kind
type AllSyncer interface {
	SyncAll(ctx context.Context) syncapp.AllResult
}

// ScheduledSync adapts a sync service to a scheduler.Runner. A run fails
// when either kind failed at the transport level.
func ScheduledSync(svc AllSyncer) scheduler.Runner {
	return scheduler.RunnerFunc(func(ctx context.Context) error {
		res := svc.SyncAll(ctx)
		for _, r := range []syncapp.Result{res.Customers, res.Items} {
			if r.Failed() {
				return fmt.Errorf("%s sync failed: %s", r.Kind, r.Failure.Message)
			}
		}
		return nil
	})
}

// StartScheduledSync starts a trigger firing every cfg.SyncInterval. It
// returns nil, nil when the interval is zero.
func StartScheduledSync(ctx context.Context, cfg *config.TallyConfig, svc AllSyncer, log *zap.Logger) (*scheduler.SyncTrigger, error) {
	if cfg.SyncInterval <= 0 {
		return nil, nil
	}
	trigger, err := scheduler.NewSyncTrigger(scheduler.SyncTriggerConfig{
		Interval:   cfg.SyncInterval,
		RunTimeout: 2*cfg.ExportTimeout + cfg.PingTimeout,
	}, ScheduledSync(svc), log)
	if err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}
	return trigger, nil
}
