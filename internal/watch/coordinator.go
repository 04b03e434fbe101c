package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Coordinator enumerates active doctors on a fixed cadence and emits one
// independent work item per doctor, letting the worker fleet scale out
// horizontally. It never runs checks itself.
type Coordinator struct {
	catalog  Catalog
	producer Emitter
	interval time.Duration
	log      *zap.Logger
}

func NewCoordinator(catalog Catalog, producer Emitter, interval time.Duration, log *zap.Logger) *Coordinator {
	return &Coordinator{catalog: catalog, producer: producer, interval: interval, log: log}
}

// Run schedules enumeration ticks until ctx is canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	sched := cron.New()
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := sched.AddFunc(spec, func() { c.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	sched.Start()

	// One immediate tick so a fresh deploy does not wait a full interval.
	c.tick(ctx)

	<-ctx.Done()
	stopped := sched.Stop()
	<-stopped.Done()
	c.log.Info("coordinator stopping")
	return nil
}

// tick emits one cycle's worth of work items. Per-doctor emit failures are
// logged and skipped; the rest of the cycle still goes out.
func (c *Coordinator) tick(ctx context.Context) {
	doctors, err := c.catalog.ListActiveDoctors(ctx)
	if err != nil {
		c.log.Error("catalog enumeration failed", zap.Error(err))
		return
	}

	cycleID := uuid.NewString()
	emitted := 0
	for _, d := range doctors {
		if ctx.Err() != nil {
			return
		}
		item := WorkItem{
			ID:        uuid.NewString(),
			CycleID:   cycleID,
			DoctorID:  d.ID,
			EmittedAt: time.Now().UTC(),
		}
		if err := c.producer.Emit(ctx, item); err != nil {
			c.log.Error("emit failed", zap.Int64("doctor", d.ID), zap.Error(err))
			continue
		}
		emitted++
	}
	c.log.Info("cycle emitted", zap.String("cycle", cycleID), zap.Int("doctors", emitted))
}
