// Package sweep runs the card expiry sweep: the only path that moves a card
// into the terminal EXPIRED state.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/finwave/cards-api/internal/api/metrics"
)

const defaultInterval = time.Hour

// CardExpirer is the single repository capability the sweep needs.
type CardExpirer interface {
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically marks past-expiry cards EXPIRED.
type Sweeper struct {
	cards    CardExpirer
	interval time.Duration
	log      zerolog.Logger
}

// NewSweeper creates a Sweeper. If interval <= 0, defaultInterval is used.
func NewSweeper(cards CardExpirer, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{cards: cards, interval: interval, log: log}
}

// Start launches the sweep loop. It runs one sweep immediately, then on every
// tick until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	s.sweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	n, err := s.cards.ExpireOlderThan(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("card expiry sweep failed")
		return
	}
	if n > 0 {
		metrics.CardsExpiredTotal.Add(float64(n))
		s.log.Info().Int64("expired", n).Msg("cards marked expired")
	}
}
