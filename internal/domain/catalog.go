package domain

import (
	"strings"
	"time"
)

// PlaceholderPrefix marks identifiers derived from a slug hash instead of a
// real extraction. Entities carrying them must never reach the booking API.
const PlaceholderPrefix = "auto-"

// Doctor is one monitored profile together with its centers and services.
type Doctor struct {
	ID          int64
	Name        string
	Slug        string
	ProviderID  string // numeric id assigned by the booking provider
	Specialty   string
	Active      bool
	LastChecked *time.Time // UTC, nullable
	CreatedAt   time.Time  // UTC
	Centers     []Center
}

// Center is one physical location a doctor accepts visits at.
type Center struct {
	ID           int64
	DoctorID     int64
	CenterID     string // opaque provider identifier
	UserCenterID string // opaque provider identifier
	Name         string
	Address      string
	Phone        string
	Services     []Service
}

// Service is one bookable visit type at a center.
type Service struct {
	ID        int64
	CenterID  int64
	ServiceID string // opaque provider identifier
	Name      string
}

// IsPlaceholder reports whether id came from the slug-hash fallback.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// Pollable reports whether this (center, service) pair carries identifiers the
// booking protocol will accept.
func (c Center) Pollable(s Service) bool {
	if c.CenterID == "" || c.UserCenterID == "" || s.ServiceID == "" {
		return false
	}
	return !IsPlaceholder(c.CenterID) && !IsPlaceholder(c.UserCenterID) && !IsPlaceholder(s.ServiceID)
}

// PollableUnits returns the (center, service) pairs of d that satisfy the
// protocol client's identifier precondition, in catalog order.
func (d Doctor) PollableUnits() []Unit {
	var units []Unit
	for _, c := range d.Centers {
		for _, s := range c.Services {
			if c.Pollable(s) {
				units = append(units, Unit{Center: c, Service: s})
			}
		}
	}
	return units
}

// Unit is one (center, service) polling target.
type Unit struct {
	Center  Center
	Service Service
}
