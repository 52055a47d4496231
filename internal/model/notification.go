package model

import "time"

// Notification types. The first three fire once per lifecycle event,
// the reminder trio is re-planned while a visit is still ahead, and the
// last two follow a completed visit.
const (
	NotifyCreated      = "created"
	NotifyChanged      = "changed"
	NotifyCanceled     = "canceled"
	NotifyDayBefore    = "day_before"
	NotifyReminder     = "reminder"
	NotifyConfirmation = "confirmation"
	NotifyAfterVisit   = "after_visit"
	NotifyRebook14     = "rebook_14"
)

// Notification is one scheduled outbound message for a booking. The
// composite unique index on (BookingID, Type) backstops concurrent
// planner runs: a duplicate insert fails at the store, not in code.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	BookingID uint   `gorm:"not null;uniqueIndex:idx_booking_type"`
	Type      string `gorm:"not null;uniqueIndex:idx_booking_type"`
	FireAt    time.Time `gorm:"index;not null"`
	Sent      bool      `gorm:"default:false;not null"`
	CreatedAt time.Time
}

// ReminderType reports whether t is one of the future-facing types that
// a cancellation supersedes.
func ReminderType(t string) bool {
	switch t {
	case NotifyDayBefore, NotifyReminder, NotifyConfirmation, NotifyAfterVisit, NotifyRebook14:
		return true
	}
	return false
}
