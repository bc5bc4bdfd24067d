package service

import (
	"context"
	"time"

	"github.com/sifan077/SnipURL/internal/app/repository"
	infraprom "github.com/sifan077/SnipURL/internal/infra/prometheus"
	"go.uber.org/zap"
)

// DefaultSweepInterval is how often expired links are demoted.
const DefaultSweepInterval = 60 * time.Second

// ExpirySweeper periodically demotes expired Active links to Inactive.
//
// It owns its own lifecycle so tests can drive a single sweep through
// RunOnce instead of waiting on the wall clock. Failures are logged and
// swallowed; the ticker keeps running no matter how a sweep went.
type ExpirySweeper struct {
	logger   *zap.Logger
	store    repository.ExpiryStore
	interval time.Duration
	stopChan chan struct{}
}

// NewExpirySweeper creates a sweeper. A non-positive interval falls back to
// the 60 second default.
func NewExpirySweeper(logger *zap.Logger, store repository.ExpiryStore, interval time.Duration) *ExpirySweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &ExpirySweeper{
		logger:   logger,
		store:    store,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweeping.
func (s *ExpirySweeper) Start() {
	go s.run()
}

// Stop stops the periodic sweeping.
func (s *ExpirySweeper) Stop() {
	close(s.stopChan)
}

func (s *ExpirySweeper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopChan:
			s.logger.Info("expiry sweeper stopped")
			return
		}
	}
}

// RunOnce performs a single sweep and returns how many links were demoted.
// The filter already excludes Inactive links, so re-running over the same
// dataset is a no-op.
func (s *ExpirySweeper) RunOnce(ctx context.Context) int64 {
	affected, err := s.store.DemoteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to demote expired links", zap.Error(err))
		return 0
	}

	if affected > 0 {
		infraprom.LinksExpired.Add(float64(affected))
		s.logger.Info("expired links demoted to inactive",
			zap.Int64("count", affected))
	}
	return affected
}
