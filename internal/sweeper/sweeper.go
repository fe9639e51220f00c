// Package sweeper periodically deletes applications left behind when a need
// was removed but its applications were not.
package sweeper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the sweep hourly.
const DefaultSchedule = "@every 1h"

type orphanDeleter interface {
	DeleteOrphanApplications(ctx context.Context) (int64, error)
}

// Sweeper wraps robfig/cron and runs the orphan cleanup on a schedule.
type Sweeper struct {
	cron     *cron.Cron
	store    orphanDeleter
	logger   *zap.Logger
	spec     string
	timeout  time.Duration
	mu       sync.Mutex
	started  bool
	disabled bool
}

// New creates a Sweeper. An empty schedule disables it.
func New(store orphanDeleter, schedule string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	schedule = strings.TrimSpace(schedule)

	return &Sweeper{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:    store,
		logger:   logger.Named("sweeper"),
		spec:     schedule,
		timeout:  time.Minute,
		disabled: schedule == "",
	}
}

// Start registers the job and starts the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.disabled {
		s.logger.Info("sweeper disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("sweeper started", zap.String("schedule", s.spec))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("sweeper stopped")
}

// RunOnce performs a single sweep and returns how many applications it removed.
func (s *Sweeper) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.store.DeleteOrphanApplications(ctx)
	if err != nil {
		s.logger.Error("orphan sweep failed", zap.Error(err))
		return 0
	}

	if deleted > 0 {
		s.logger.Info("orphan applications removed", zap.Int64("deleted", deleted))
	} else {
		s.logger.Debug("no orphan applications")
	}
	return deleted
}
