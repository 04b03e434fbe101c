package watch

import (
	"time"

	"github.com/google/uuid"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// UnitResult tags one (center, service) polling unit with its outcome.
type UnitResult struct {
	CenterID  string
	ServiceID string
	Slots     int
	Err       error
}

// DoctorResult is the aggregated outcome of checking one doctor. Both
// execution modes produce this same shape so the fan-out stays mode-agnostic.
type DoctorResult struct {
	DoctorID int64
	Slots    []domain.AppointmentSlot
	Units    []UnitResult
}

// SlotCount returns the aggregated number of discovered slots.
func (r DoctorResult) SlotCount() int { return len(r.Slots) }

// Failed reports whether every polled unit errored out. A doctor with no
// pollable units at all did not fail; it just has nothing to report.
func (r DoctorResult) Failed() bool {
	if len(r.Units) == 0 {
		return false
	}
	for _, u := range r.Units {
		if u.Err == nil {
			return false
		}
	}
	return true
}

// CycleReport summarizes one full pass over the active catalog.
type CycleReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Doctors    map[int64]DoctorResult
}

func newCycleReport(start time.Time) *CycleReport {
	return &CycleReport{
		ID:        uuid.NewString(),
		StartedAt: start,
		Doctors:   make(map[int64]DoctorResult),
	}
}
