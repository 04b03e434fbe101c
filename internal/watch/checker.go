package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/p24"
)

// BookingClient is the slice of the protocol client the checker needs.
type BookingClient interface {
	ListOpenDays(ctx context.Context, center domain.Center, svc domain.Service, terminalID string) ([]int64, error)
	ListSlotsForDay(ctx context.Context, center domain.Center, svc domain.Service, terminalID string, day time.Time) ([]domain.AppointmentSlot, error)
}

// Checker runs the per-doctor discovery body shared by the loop scheduler,
// the kafka worker and the on-demand self-check.
type Checker struct {
	client    BookingClient
	daysAhead int
	log       *zap.Logger
}

func NewChecker(client BookingClient, daysAhead int, log *zap.Logger) *Checker {
	return &Checker{client: client, daysAhead: daysAhead, log: log}
}

// CheckDoctor walks the doctor's pollable (center, service) units in catalog
// order. One fresh terminal id covers the whole call burst against a center.
// Unit failures are recorded and isolated; they never abort the walk. The
// context is honored between units, not mid-call.
func (c *Checker) CheckDoctor(ctx context.Context, d domain.Doctor) DoctorResult {
	result := DoctorResult{DoctorID: d.ID}
	now := time.Now().UTC()

	for _, center := range d.Centers {
		terminalID := p24.NewTerminalID()
		for _, svc := range center.Services {
			if ctx.Err() != nil {
				return result
			}
			if !center.Pollable(svc) {
				continue
			}

			unit := UnitResult{CenterID: center.CenterID, ServiceID: svc.ServiceID}
			slots, err := c.checkUnit(ctx, center, svc, terminalID, now)
			if err != nil {
				unit.Err = err
				c.log.Warn("unit check failed",
					zap.Int64("doctor", d.ID),
					zap.String("center", center.CenterID),
					zap.String("service", svc.ServiceID),
					zap.Error(err))
			} else {
				unit.Slots = len(slots)
				result.Slots = append(result.Slots, slots...)
			}
			result.Units = append(result.Units, unit)
		}
	}
	return result
}

// checkUnit performs day discovery then per-day slot discovery for one
// (center, service), bounded by the look-ahead window.
func (c *Checker) checkUnit(ctx context.Context, center domain.Center, svc domain.Service, terminalID string, now time.Time) ([]domain.AppointmentSlot, error) {
	rawDays, err := c.client.ListOpenDays(ctx, center, svc, terminalID)
	if err != nil {
		return nil, err
	}

	var slots []domain.AppointmentSlot
	for _, day := range p24.FilterDays(now, c.daysAhead, rawDays) {
		daySlots, err := c.client.ListSlotsForDay(ctx, center, svc, terminalID, day)
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}
	return slots, nil
}
