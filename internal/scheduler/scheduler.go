// Package scheduler runs periodic portfolio maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/lotfolio/lotfolio/internal/service"
)

// Scheduler owns the cron runner for the daily analysis snapshot.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the snapshot job on the given cron schedule
// (standard five-field cron expression, e.g. "0 18 * * *").
func New(schedule string, snapshotService *service.SnapshotService) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		snapshot, err := snapshotService.CaptureToday(context.Background())
		if err != nil {
			log.Printf("snapshot job failed: %v", err)
			return
		}
		log.Printf("captured analysis snapshot for %s (%d open lots, %d closed trades)",
			snapshot.SnapshotDate, snapshot.OpenLotCount, snapshot.ClosedTradeCount)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and returns a context that completes once any
// running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
