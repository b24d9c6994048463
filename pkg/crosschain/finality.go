package crosschain

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/pkg/types"
)

const DefaultPollInterval = 10 * time.Second

// Clock is the part of github.com/benbjohnson/clock the waiter sleeps on.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// Waiter blocks until a source chain has buried an inclusion height deep enough.
type Waiter struct {
	probe    *Probe
	clock    Clock
	interval time.Duration
}

func NewWaiter(probe *Probe, clock Clock, interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Waiter{probe: probe, clock: clock, interval: interval}
}

// Wait polls until lib - inclusionHeight > depth and returns the satisfying status.
// There is no internal deadline: ctx is checked between polls and bounds the wait.
// Status query failures are treated like a not yet final chain and re-polled.
func (w *Waiter) Wait(ctx context.Context, alias string, inclusionHeight, depth int64) (*types.ChainStatus, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("finality wait on %s at height %d: %w", alias, inclusionHeight, err)
		}
		status, err := w.probe.Status(ctx, alias)
		if err != nil {
			log.Warn().Err(err).Str("chain", alias).
				Msg("[FinalityWaiter] [Wait] cannot get chain status, retry on next poll")
		} else {
			log.Debug().Str("chain", alias).
				Int64("libHeight", status.LibHeight).
				Int64("transferHeight", inclusionHeight).
				Int64("depth", depth).
				Msg("[FinalityWaiter] [Wait] from chain lib height vs transfer tx package height")
			if status.LibHeight-inclusionHeight > depth {
				return status, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("finality wait on %s at height %d: %w", alias, inclusionHeight, ctx.Err())
		case <-w.clock.After(w.interval):
		}
	}
}
