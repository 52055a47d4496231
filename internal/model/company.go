package model

import "time"

// Company holds the salon name and address used in message templates.
// A deployment serves a single company; the row is seeded from config.
type Company struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Address   string `gorm:"not null"`
	CreatedAt time.Time
	Bookings  []Booking `gorm:"foreignKey:CompanyID"`
}
