package revocation

import (
	"context"
	"log/slog"
	"time"

	"municipal-docs/internal/metrics"
)

// RunSweeper sweeps reg every interval until ctx is done. It blocks; run it
// in its own goroutine.
func RunSweeper(ctx context.Context, reg Registry, interval time.Duration, log *slog.Logger, m *metrics.Metrics) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			removed, err := reg.Sweep(ctx)
			if err != nil {
				log.Error("revocation sweep failed", "err", err)
				continue
			}
			m.ObserveSweep("periodic", removed)
			if removed > 0 {
				log.Debug("revocation sweep", "removed", removed)
			}
		}
	}
}
