// Package watch drives the polling cadence over the monitored catalog and
// aggregates per-doctor discovery results, in either a single-process loop or
// a kafka-distributed coordinator/worker topology.
package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/notify"
)

// Catalog is the read-only doctor/center/service view plus the last-checked
// bookkeeping write-back.
type Catalog interface {
	ListActiveDoctors(ctx context.Context) ([]domain.Doctor, error)
	TouchDoctorChecked(ctx context.Context, id int64, at time.Time) error
}

// Notifier hands a non-empty discovery result to the fan-out.
type Notifier interface {
	Notify(ctx context.Context, doctor domain.Doctor, slots []domain.AppointmentSlot) (notify.DeliveryReport, error)
}

// Scheduler is the cooperative single-process polling loop: one cycle walks
// every active doctor sequentially, then sleeps for the configured interval.
type Scheduler struct {
	catalog  Catalog
	checker  *Checker
	notifier Notifier
	interval time.Duration
	log      *zap.Logger
}

func NewScheduler(catalog Catalog, checker *Checker, notifier Notifier, interval time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{
		catalog:  catalog,
		checker:  checker,
		notifier: notifier,
		interval: interval,
		log:      log,
	}
}

// Run cycles until ctx is canceled. The first cycle starts immediately.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runCycleLogged(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runCycleLogged(ctx context.Context) {
	report, err := s.RunCycle(ctx)
	if err != nil {
		s.log.Error("cycle failed", zap.Error(err))
		return
	}
	s.log.Info("cycle finished",
		zap.String("cycle", report.ID),
		zap.Int("doctors", len(report.Doctors)),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
}

// RunCycle performs one pass: snapshot the catalog, check every doctor,
// invoke the fan-out for each non-empty result. A doctor whose units all
// failed, or that yielded zero slots, is never passed to the fan-out. An
// empty catalog is a no-op cycle, not an error.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := newCycleReport(time.Now().UTC())

	doctors, err := s.catalog.ListActiveDoctors(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range doctors {
		if ctx.Err() != nil {
			break
		}

		result := s.checker.CheckDoctor(ctx, d)
		report.Doctors[d.ID] = result

		if err := s.catalog.TouchDoctorChecked(ctx, d.ID, time.Now().UTC()); err != nil {
			s.log.Error("touch last-checked failed", zap.Int64("doctor", d.ID), zap.Error(err))
		}

		if result.SlotCount() == 0 {
			continue
		}
		dr, err := s.notifier.Notify(ctx, d, result.Slots)
		if err != nil {
			s.log.Error("fan-out failed", zap.Int64("doctor", d.ID), zap.Error(err))
			continue
		}
		s.log.Info("doctor notified",
			zap.Int64("doctor", d.ID),
			zap.Int("slots", result.SlotCount()),
			zap.Int("subscribers", dr.Subscribers),
			zap.Int("delivered", dr.Delivered),
			zap.Int("deactivated", dr.Deactivated))
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}
