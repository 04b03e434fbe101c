package domain

import "time"

// AppointmentSlot is one open turn reported by the booking backend for a
// (center, service, day). Slots are ephemeral and never persisted.
type AppointmentSlot struct {
	From time.Time // UTC
	To   time.Time // UTC
	Turn int       // workhour turn number within the day
}

// AppointmentLog is the per-cycle audit record kept instead of raw slots.
type AppointmentLog struct {
	ID        int64
	DoctorID  int64
	SlotCount int
	Notified  int
	FirstSlot *time.Time // UTC, nullable
	CreatedAt time.Time  // UTC
}
