package model

import "time"

// User links a Telegram account to the phone number the salon knows the
// client by. Phone stays empty until the user shares a contact; a negative
// TelegramID marks a placeholder account that must never receive messages.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"uniqueIndex"`
	Phone      string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Bookings   []Booking `gorm:"foreignKey:UserID"`
}

// Registered reports whether the user has submitted a phone number.
func (u User) Registered() bool {
	return u.Phone != ""
}
