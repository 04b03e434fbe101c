// Package notify delivers discovery alerts to a doctor's active subscribers
// and classifies delivery failures.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// DeliveryError classifies one failed send. Permanent failures (recipient
// blocked the bot, chat gone) trigger subscription deactivation; transient
// failures are counted and naturally retried next cycle if slots persist.
type DeliveryError struct {
	Permanent bool
	Err       error
}

func (e *DeliveryError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("delivery (%s): %v", kind, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Messenger is the capability interface over the chat transport. Send returns
// nil, a *DeliveryError, or a plain error (treated as transient).
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// SubscriberProvider resolves delivery targets and accepts deactivation
// requests. The fan-out never mutates subscription state directly.
type SubscriberProvider interface {
	ListActiveSubscribers(ctx context.Context, doctorID int64) ([]domain.Subscriber, error)
	DeactivateSubscription(ctx context.Context, userID, doctorID int64) error
}

// AuditSink records one aggregate row per (doctor, cycle).
type AuditSink interface {
	AppendCycleRecord(ctx context.Context, rec domain.AppointmentLog) error
}

// DeliveryReport summarizes one fan-out pass.
type DeliveryReport struct {
	Subscribers int
	Delivered   int
	Transient   int
	Deactivated int
}

// Fanout performs per-subscriber delivery with failure classification and a
// small inter-message pause toward the transport's rate limits.
type Fanout struct {
	messenger    Messenger
	subs         SubscriberProvider
	audit        AuditSink
	providerHost string
	sendDelay    time.Duration
	log          *zap.Logger
}

func New(messenger Messenger, subs SubscriberProvider, audit AuditSink, providerHost string, sendDelay time.Duration, log *zap.Logger) *Fanout {
	return &Fanout{
		messenger:    messenger,
		subs:         subs,
		audit:        audit,
		providerHost: providerHost,
		sendDelay:    sendDelay,
		log:          log,
	}
}

// Notify resolves the doctor's active subscribers at invocation time and
// delivers one alert each. Per-subscriber failures never abort the pass.
// One audit record is appended regardless of delivery outcomes.
func (f *Fanout) Notify(ctx context.Context, doctor domain.Doctor, slots []domain.AppointmentSlot) (DeliveryReport, error) {
	var report DeliveryReport

	subscribers, err := f.subs.ListActiveSubscribers(ctx, doctor.ID)
	if err != nil {
		return report, fmt.Errorf("resolve subscribers: %w", err)
	}
	report.Subscribers = len(subscribers)

	text := FormatAlert(f.providerHost, doctor, slots)
	for i, sub := range subscribers {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && f.sendDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(f.sendDelay):
			}
			if ctx.Err() != nil {
				break
			}
		}

		err := f.messenger.Send(ctx, sub.ChatID, text)
		switch de := classify(err); {
		case de == nil:
			report.Delivered++
		case de.Permanent:
			report.Deactivated++
			f.log.Info("deactivating subscription after permanent delivery failure",
				zap.Int64("user", sub.UserID), zap.Int64("doctor", doctor.ID), zap.Error(de.Err))
			if derr := f.subs.DeactivateSubscription(ctx, sub.UserID, doctor.ID); derr != nil {
				f.log.Error("deactivation request failed",
					zap.Int64("user", sub.UserID), zap.Int64("doctor", doctor.ID), zap.Error(derr))
			}
		default:
			report.Transient++
			f.log.Warn("transient delivery failure",
				zap.Int64("user", sub.UserID), zap.Int64("doctor", doctor.ID), zap.Error(de.Err))
		}
	}

	rec := domain.AppointmentLog{
		DoctorID:  doctor.ID,
		SlotCount: len(slots),
		Notified:  report.Delivered,
		CreatedAt: time.Now().UTC(),
	}
	if len(slots) > 0 {
		first := slots[0].From
		rec.FirstSlot = &first
	}
	if err := f.audit.AppendCycleRecord(ctx, rec); err != nil {
		f.log.Error("audit append failed", zap.Int64("doctor", doctor.ID), zap.Error(err))
	}

	return report, nil
}

// classify folds a send result into the delivery taxonomy. Unclassified
// errors count as transient; only an explicit permanent classification may
// deactivate a subscription.
func classify(err error) *DeliveryError {
	if err == nil {
		return nil
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de
	}
	return &DeliveryError{Permanent: false, Err: err}
}
