package session

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/foresight/internal/models"
)

// Sweeper retires idle sessions. Active sessions idle past the timeout are
// terminated as abandoned; non-active sessions idle past the timeout are
// evicted from the store.
type Sweeper struct {
	controller  *Controller
	locks       *Locks
	idleTimeout time.Duration
	interval    time.Duration
	now         func() time.Time
	logger      Logger
}

// NewSweeper creates a sweeper. locks may be nil; when set, sessions with a
// turn in flight are skipped.
func NewSweeper(c *Controller, locks *Locks, idleTimeout, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		controller:  c,
		locks:       locks,
		idleTimeout: idleTimeout,
		interval:    interval,
		now:         time.Now,
		logger:      logger,
	}
}

// SweepResult counts the sessions touched by one pass.
type SweepResult struct {
	Abandoned int
	Evicted   int
}

// SweepOnce runs a single pass.
func (sw *Sweeper) SweepOnce() SweepResult {
	var res SweepResult
	cutoff := sw.now().Add(-sw.idleTimeout)

	for _, s := range sw.controller.List() {
		if !s.UpdatedAt.Before(cutoff) {
			continue
		}

		release := func() {}
		if sw.locks != nil {
			ok, r := sw.locks.TryLock(s.ID)
			if !ok {
				continue
			}
			release = r
		}

		// The listed snapshot may be stale; the controller re-checks under its lock.
		if s.Status == models.StatusActive {
			if ok, err := sw.controller.AbandonIfIdle(s.ID, cutoff); err == nil && ok {
				res.Abandoned++
			}
		} else if sw.controller.EvictIfIdle(s.ID, cutoff) {
			res.Evicted++
		}
		release()
	}

	if sw.logger != nil && (res.Abandoned > 0 || res.Evicted > 0) {
		sw.logger.LogInfo(fmt.Sprintf("session sweep: %d abandoned, %d evicted", res.Abandoned, res.Evicted))
	}
	return res
}

// Run sweeps every interval until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sw.SweepOnce()
		}
	}
}
