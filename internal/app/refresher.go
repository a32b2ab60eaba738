package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/pricewatch/internal/search"
)

const minRefreshInterval = 5 * time.Second

// refreshTarget is the slice of *search.Container the refresher drives.
type refreshTarget interface {
	Snapshot() search.State
	FetchProducts(ctx context.Context) *search.Request
}

// StartRefresher launches a background goroutine that reloads products at a
// fixed cadence so a running scrape job's results show up on their own. A
// tick is skipped while any request is in flight. It returns immediately.
func StartRefresher(ctx context.Context, target refreshTarget, interval time.Duration, logger zerolog.Logger) {
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			refresh(ctx, target, logger)
		}
	}()
}

func refresh(ctx context.Context, target refreshTarget, logger zerolog.Logger) {
	if target.Snapshot().Loading {
		logger.Debug().Msg("refresh skipped; request in flight")
		return
	}
	req := target.FetchProducts(ctx)
	err := req.Wait(ctx)
	switch {
	case err == nil:
	case errors.Is(err, search.ErrSuperseded), errors.Is(err, context.Canceled):
		logger.Debug().Err(err).Uint64("seq", req.Seq).Msg("refresh did not apply")
	default:
		logger.Warn().Err(err).Uint64("seq", req.Seq).Msg("refresh failed")
	}
}
