package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"salon-notify/internal/model"
)

// ErrDuplicate reports an insert rejected by the (booking, type)
// uniqueness constraint. Callers treat it as a benign no-op.
var ErrDuplicate = errors.New("notification already exists")

// NotificationRepository handles CRUD for notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *NotificationRepository) WithTx(tx *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: tx}
}

// Create inserts a notification, mapping a unique-constraint violation
// to ErrDuplicate.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// FindAny returns the notification for (bookingID, type) regardless of
// its sent flag, or nil when none exists.
func (r *NotificationRepository) FindAny(ctx context.Context, bookingID uint, typ string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Where("booking_id = ? AND type = ?", bookingID, typ).First(&n).Error
	switch {
	case err == nil:
		return &n, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find notification: %w", err)
	}
}

// FindUnsent returns the unsent notification for (bookingID, type), or
// nil when none exists.
func (r *NotificationRepository) FindUnsent(ctx context.Context, bookingID uint, typ string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND type = ? AND sent = ?", bookingID, typ, false).
		First(&n).Error
	switch {
	case err == nil:
		return &n, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find unsent notification: %w", err)
	}
}

// UpdateFireAt moves an unsent notification to a new fire time.
func (r *NotificationRepository) UpdateFireAt(ctx context.Context, id uint, fireAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).
		Update("fire_at", fireAt).Error; err != nil {
		return fmt.Errorf("update fire time: %w", err)
	}
	return nil
}

// ListDue returns all unsent notifications whose fire time has passed.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time) ([]model.Notification, error) {
	var due []model.Notification
	if err := r.db.WithContext(ctx).
		Where("sent = ? AND fire_at <= ?", false, now).
		Order("fire_at").
		Find(&due).Error; err != nil {
		return nil, err
	}
	return due, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint) (*model.Notification, error) {
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkSent flips the sent flag; its own commit, independent per
// notification.
func (r *NotificationRepository) MarkSent(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).Where("id = ?", id).
		Update("sent", true).Error; err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
