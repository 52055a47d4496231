package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"salon-notify/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// UpsertFromTelegram finds or creates a user for the given Telegram id.
// Phone stays whatever it was; registration updates it separately.
func (r *UserRepository) UpsertFromTelegram(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{TelegramID: telegramID}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// SetPhone stores a normalized phone for the user, creating the user on
// first contact if needed.
func (r *UserRepository) SetPhone(ctx context.Context, telegramID int64, phone string) (*model.User, error) {
	user, err := r.UpsertFromTelegram(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user.Phone != phone {
		if err := r.db.WithContext(ctx).Model(user).Update("phone", phone).Error; err != nil {
			return nil, fmt.Errorf("update phone: %w", err)
		}
		user.Phone = phone
	}
	return user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWithPhone returns every user who has completed registration.
func (r *UserRepository) ListWithPhone(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("phone <> ''").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
