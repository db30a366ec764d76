package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
)

// Refresher runs one snapshot extraction.
type Refresher interface {
	Run(ctx context.Context) (store.Snapshot, error)
}

// Scheduler re-extracts snapshots on a fixed interval so the served data does
// not go stale between manual refreshes. One refresh runs at a time; a slow
// extraction simply delays the next tick.
type Scheduler struct {
	refresher  Refresher
	invalidate func()
	interval   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler. invalidate is called after every successful refresh
// to drop downstream caches; it may be nil.
func New(refresher Refresher, invalidate func(), interval time.Duration) (*Scheduler, error) {
	if refresher == nil {
		return nil, fmt.Errorf("refresher is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	return &Scheduler{
		refresher:  refresher,
		invalidate: invalidate,
		interval:   interval,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("scheduler already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, done)
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	logger := zerolog.Ctx(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("snapshot scheduler stopped")
			return
		case <-ticker.C:
			snap, err := s.refresher.Run(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("scheduled refresh failed")
				continue
			}
			if s.invalidate != nil {
				s.invalidate()
			}
			logger.Info().
				Str("snapshot", snap.ID).
				Int("deals", snap.DealCount).
				Msg("scheduled refresh completed")
		}
	}
}
