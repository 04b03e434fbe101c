package watch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// WorkerCatalog is the per-item catalog view a worker needs.
type WorkerCatalog interface {
	GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error)
	TouchDoctorChecked(ctx context.Context, id int64, at time.Time) error
}

// Worker consumes work items and runs the same per-doctor body the loop
// scheduler runs, producing the identical result shape for the fan-out.
type Worker struct {
	reader   *kafka.Reader
	catalog  WorkerCatalog
	checker  *Checker
	notifier Notifier
	log      *zap.Logger
}

func NewWorker(reader *kafka.Reader, catalog WorkerCatalog, checker *Checker, notifier Notifier, log *zap.Logger) *Worker {
	return &Worker{reader: reader, catalog: catalog, checker: checker, notifier: notifier, log: log}
}

// Run drains the topic until ctx is canceled. Messages are committed after
// processing; a malformed payload is committed too (re-reading will not fix
// it).
func (w *Worker) Run(ctx context.Context) error {
	defer func() { _ = w.reader.Close() }()

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.log.Info("worker stopping")
				return nil
			}
			return err
		}

		var item WorkItem
		if err := json.Unmarshal(msg.Value, &item); err != nil {
			w.log.Error("malformed work item", zap.Error(err))
		} else {
			w.process(ctx, item)
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("commit failed", zap.Error(err))
		}
	}
}

// process runs one per-doctor check. Failures are logged, never fatal to the
// worker; cancellation is per-work-item via ctx.
func (w *Worker) process(ctx context.Context, item WorkItem) {
	doctor, err := w.catalog.GetDoctor(ctx, item.DoctorID)
	if err != nil {
		w.log.Error("unknown doctor in work item",
			zap.Int64("doctor", item.DoctorID), zap.String("cycle", item.CycleID), zap.Error(err))
		return
	}
	if !doctor.Active {
		// Deactivated between emit and consume; drop silently.
		return
	}

	result := w.checker.CheckDoctor(ctx, *doctor)

	if err := w.catalog.TouchDoctorChecked(ctx, doctor.ID, time.Now().UTC()); err != nil {
		w.log.Error("touch last-checked failed", zap.Int64("doctor", doctor.ID), zap.Error(err))
	}

	if result.SlotCount() == 0 {
		return
	}
	dr, err := w.notifier.Notify(ctx, *doctor, result.Slots)
	if err != nil {
		w.log.Error("fan-out failed", zap.Int64("doctor", doctor.ID), zap.Error(err))
		return
	}
	w.log.Info("doctor notified",
		zap.Int64("doctor", doctor.ID),
		zap.String("cycle", item.CycleID),
		zap.Int("slots", result.SlotCount()),
		zap.Int("delivered", dr.Delivered))
}
