package store

import (
	"context"
	"time"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// Repo defines storage operations for the monitored catalog, subscriptions
// and the audit log. The polling and notification core consumes narrower
// views of this (watch.Catalog, notify.SubscriberProvider, notify.AuditSink).
type Repo interface {
	// Catalog.
	SaveBundle(ctx context.Context, b *domain.ProfileBundle) (*domain.Doctor, error)
	ListActiveDoctors(ctx context.Context) ([]domain.Doctor, error)
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error)
	SetDoctorActive(ctx context.Context, id int64, active bool) error
	TouchDoctorChecked(ctx context.Context, id int64, at time.Time) error

	// Users and subscriptions.
	EnsureUser(ctx context.Context, u *domain.User) error
	Subscribe(ctx context.Context, userID, doctorID int64) error
	Unsubscribe(ctx context.Context, userID, doctorID int64) error
	ListActiveSubscribers(ctx context.Context, doctorID int64) ([]domain.Subscriber, error)
	DeactivateSubscription(ctx context.Context, userID, doctorID int64) error
	ListUserSubscriptions(ctx context.Context, userID int64) ([]domain.Doctor, error)

	// Audit log.
	AppendCycleRecord(ctx context.Context, rec domain.AppointmentLog) error
	RecentCycleRecords(ctx context.Context, doctorID int64, limit int) ([]domain.AppointmentLog, error)

	Close() error
}
