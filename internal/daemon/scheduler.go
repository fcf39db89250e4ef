package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
)

// Schedule runs one alert cycle every interval until ctx ends. The first run starts right away.
func (c *Core) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("built-in alert scheduler disabled")
		return
	}

	log.Info().Dur("interval", interval).Msg("built-in alert scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.cycle(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("built-in alert scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (c *Core) cycle(ctx context.Context) {
	report, stats, err := alert.RunCycle(ctx, c.Scanner, c.Worker)
	if err != nil {
		log.Error().Err(err).Str("run", report.RunID).Msg("scheduled alert cycle failed")
		return
	}

	log.Debug().
		Str("run", report.RunID).
		Int("created", report.Created()).
		Int("sent", stats.Sent).
		Msg("scheduled alert cycle done")
}
