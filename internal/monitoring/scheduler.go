package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionCleaner clears the login flag of admins whose token has expired.
type SessionCleaner interface {
	ClearExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper periodically logs out admins whose last token has expired,
// so an expired token does not leave the single-session flag set forever.
type SessionSweeper struct {
	cleaner SessionCleaner
	cron    *cron.Cron
	now     func() time.Time
}

// NewSessionSweeper creates a sweeper running on a standard 5-field cron spec.
func NewSessionSweeper(cleaner SessionCleaner, spec string) (*SessionSweeper, error) {
	s := &SessionSweeper{
		cleaner: cleaner,
		cron:    cron.New(),
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the sweeper. It runs once immediately, then on schedule.
func (s *SessionSweeper) Run() {
	log.Info().Msg("Starting session sweeper...")
	s.Sweep()
	s.cron.Start()
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped session sweeper.")
}

// Sweep clears expired sessions once.
func (s *SessionSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.cleaner.ClearExpiredSessions(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("Session sweeper: failed to clear expired sessions")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Session sweeper: logged out admins with expired tokens")
	}
}
