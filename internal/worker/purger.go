// Package worker runs background maintenance for the session core.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dtroode/diary-server/internal/logger"
)

// DefaultInterval is used when NewPurger gets a non-positive interval.
const DefaultInterval = 10 * time.Minute

// ExpiredPurger deletes revocation records whose tokens have expired.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Purger periodically removes expired revocation records.
type Purger struct {
	store    ExpiredPurger
	interval time.Duration
	now      func() time.Time
	logger   *logger.Logger
}

// NewPurger creates a purger that runs every interval.
func NewPurger(store ExpiredPurger, interval time.Duration, logger *logger.Logger) *Purger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Purger{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Run purges once per interval until ctx is cancelled. It returns nil on
// cancellation; purge failures are logged and retried on the next tick.
func (p *Purger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Purger: started", "interval", p.interval.String())

	for {
		select {
		case <-ticker.C:
			if _, err := p.PurgeOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error("Purger: purge failed", "error", err.Error())
			}
		case <-ctx.Done():
			p.logger.Info("Purger: stopped")
			return nil
		}
	}
}

// PurgeOnce runs a single purge pass and returns the number of deleted records.
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	purged, err := p.store.PurgeExpired(ctx, p.now())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		p.logger.Info("Purger: expired revocations removed", "count", purged)
	} else {
		p.logger.Debug("Purger: nothing to remove")
	}
	return purged, nil
}
