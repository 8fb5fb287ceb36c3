// Package job holds background loops started by the server.
package job

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ShiftCompleter marks ended shifts COMPLETED.
type ShiftCompleter interface {
	CompletePastShifts(ctx context.Context) (int64, error)
}

// RunShiftCompletion sweeps once immediately and then every interval until ctx is done.
func RunShiftCompletion(ctx context.Context, svc ShiftCompleter, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweep(ctx, svc, logger)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, svc ShiftCompleter, logger *zap.Logger) {
	n, err := svc.CompletePastShifts(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("shift completion sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 {
		logger.Info("shifts completed", zap.Int64("count", n))
	}
}
