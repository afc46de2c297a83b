package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes expired sessions.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// StartCleaner purges expired sessions every interval until ctx is done.
func StartCleaner(ctx context.Context, p Purger, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := p.PurgeExpired(ctx)
				if err != nil {
					log.Error("failed to purge expired sessions", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("purged expired sessions", zap.Int("removed", removed))
				}
			}
		}
	}()
}
