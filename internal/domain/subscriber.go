package domain

import "time"

// User is a chat identity known to the bot. Active is flipped off by
// permanent delivery failures, never by the user themselves.
type User struct {
	ID        int64 // telegram chat id
	Name      string
	Active    bool
	CreatedAt time.Time // UTC
}

// Subscription links a user to a doctor. At most one row per (user, doctor)
// is ever logically active; resubscribing toggles the flag.
type Subscription struct {
	UserID    int64
	DoctorID  int64
	Active    bool
	CreatedAt time.Time // UTC
	UpdatedAt time.Time // UTC
}

// Subscriber is the delivery view of an active subscription: just enough to
// address a message and to request deactivation afterwards.
type Subscriber struct {
	UserID int64
	ChatID int64
	Name   string
}
