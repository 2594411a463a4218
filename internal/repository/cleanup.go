package repository

import (
	"context"
	"time"

	"github.com/GoPolymarket/econgate/internal/pkg/logger"
)

// Cleaner is implemented by stores that expire old rows.
type Cleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

type CleanupTarget struct {
	Name      string
	Store     Cleaner
	Retention time.Duration
}

// RunCleanup sweeps every target once, then again each interval, until ctx
// is done. A failing target is logged and retried on the next tick.
func RunCleanup(ctx context.Context, interval time.Duration, targets ...CleanupTarget) {
	if interval <= 0 || len(targets) == 0 {
		return
	}
	sweep := func() {
		for _, t := range targets {
			if t.Store == nil || t.Retention <= 0 {
				continue
			}
			if err := t.Store.Cleanup(ctx, t.Retention); err != nil {
				logger.LogError(ctx, err, "cleanup failed", "store", t.Name)
			}
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
