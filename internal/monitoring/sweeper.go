package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/taskhub-be/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ExpiredTokenClearer removes reset tokens that expired at or before now.
type ExpiredTokenClearer interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenSweeper periodically clears expired password reset tokens.
type TokenSweeper struct {
	store ExpiredTokenClearer
	cron  *cron.Cron
	now   func() time.Time
}

// NewTokenSweeper creates a sweeper running on schedule, a standard cron
// expression or descriptor such as "@every 15m".
func NewTokenSweeper(store ExpiredTokenClearer, schedule string) (*TokenSweeper, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s := &TokenSweeper{
		store: store,
		cron:  cron.New(),
		now:   time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, err
	}
	return s, nil
}

// Start runs the schedule in the background.
func (s *TokenSweeper) Start() {
	log.Info().Msg("Starting reset token sweeper...")
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *TokenSweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped reset token sweeper.")
}

// Sweep clears expired tokens once and returns how many were removed.
func (s *TokenSweeper) Sweep(ctx context.Context) int64 {
	n, err := s.store.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to clear expired reset tokens")
		return 0
	}
	if n > 0 {
		metrics.ResetTokensSweptTotal.Add(float64(n))
		log.Info().Int64("cleared", n).Msg("Sweeper: cleared expired reset tokens")
	}
	return n
}
