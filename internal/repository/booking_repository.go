package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"salon-notify/internal/model"
)

// BookingRepository handles CRUD for bookings.
type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *model.Booking) error {
	if err := r.db.WithContext(ctx).Save(booking).Error; err != nil {
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

// ListAll returns every booking, canceled ones included.
func (r *BookingRepository) ListAll(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByStatus returns bookings in any of the given lifecycle statuses.
func (r *BookingRepository) ListByStatus(ctx context.Context, statuses ...string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Where("status IN ?", statuses).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListActiveForUser returns the user's non-canceled bookings ordered for
// display.
func (r *BookingRepository) ListActiveForUser(ctx context.Context, userID uint) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userID, model.StatusCanceled).
		Order("date, time").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// SetStatus updates only the lifecycle status of a booking.
func (r *BookingRepository) SetStatus(ctx context.Context, id uint, status string) error {
	if err := r.db.WithContext(ctx).Model(&model.Booking{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("set booking status: %w", err)
	}
	return nil
}
