package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"tradesim/internal/engine"
)

// Scheduler drives the settlement engine on a fixed wall-clock interval.
// Overlap protection lives in the engine itself (Engine.RunTick skips
// when a tick is still in flight), so even a manual trigger is safe.
type Scheduler struct {
	cron     *cron.Cron
	engine   *engine.Engine
	interval time.Duration
}

// NewScheduler creates a scheduler that ticks the engine every interval.
func NewScheduler(e *engine.Engine, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		engine:   e,
		interval: interval,
	}
}

// Start registers the tick job and starts the scheduler.
func (s *Scheduler) Start() error {
	schedule := fmt.Sprintf("@every %s", s.interval)
	_, err := s.cron.AddFunc(schedule, func() {
		s.engine.RunTick(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule settlement tick: %w", err)
	}

	s.cron.Start()
	log.Printf("[OK] Settlement engine scheduled every %s", s.interval)
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	log.Println("Stopping settlement scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[OK] Settlement scheduler stopped")
}

// RunNow triggers an immediate tick, used by the manual trigger endpoint.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	return s.engine.RunTick(ctx)
}
