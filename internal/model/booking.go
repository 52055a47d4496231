package model

import "time"

// Booking lifecycle statuses. Status is this system's own view of a
// booking, distinct from the free-text VisitLabel coming from the
// scheduling platform.
const (
	StatusCreated  = "created"
	StatusChanged  = "changed"
	StatusActive   = "active"
	StatusCanceled = "canceled"
)

// Booking is one reservation pulled from the scheduling platform.
// (UserID, Date, Time, Service) is the natural key used to match a
// booking across scrape cycles; staff, link and visit label are mutable
// details of the same logical booking. Rows are never hard-deleted.
type Booking struct {
	ID            uint  `gorm:"primaryKey"`
	SequenceID    int64 `gorm:"uniqueIndex;not null"`
	UserID        uint  `gorm:"index;not null"`
	CompanyID     uint  `gorm:"not null"`
	Service       string
	Date          string // DD.MM.YYYY
	Time          string // HH:MM
	Staff         string
	ReferenceLink string
	VisitLabel    string // platform's own visit state, free text
	Status        string `gorm:"not null;default:created"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Notifications []Notification `gorm:"foreignKey:BookingID"`
}

// Key identifies a booking across scrape cycles.
type Key struct {
	UserID  uint
	Date    string
	Time    string
	Service string
}

// NaturalKey returns the booking's matching key.
func (b Booking) NaturalKey() Key {
	return Key{UserID: b.UserID, Date: b.Date, Time: b.Time, Service: b.Service}
}
