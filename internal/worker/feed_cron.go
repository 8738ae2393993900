package worker

// feed_cron.go
// Background goroutine that periodically refreshes the market board from the
// upstream feed. Refresh calls run through the market service's circuit
// breaker, so a downed feed degrades to last-stored quotes instead of a
// retry storm.

import (
	"context"
	"errors"
	"time"

	"github.com/santechrwanda/broker-sub002/internal/infra"
	"github.com/santechrwanda/broker-sub002/internal/service"

	"github.com/rs/zerolog/log"
)

// StartFeedCron launches a background goroutine that refreshes quotes every
// interval. It respects the context for graceful shutdown.
func StartFeedCron(ctx context.Context, market service.MarketService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("feed_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("feed_cron: shutting down")
				return
			case <-ticker.C:
				refreshed, err := market.Refresh(ctx)
				switch {
				case errors.Is(err, infra.ErrCircuitOpen):
					log.Debug().Msg("feed_cron: circuit breaker is open, skipping tick")
				case err != nil:
					log.Error().Err(err).Msg("feed_cron: refresh failed")
				default:
					log.Debug().Int("quotes", refreshed).Msg("feed_cron: quotes refreshed")
				}
			}
		}
	}()
}
