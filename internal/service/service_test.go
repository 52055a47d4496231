package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salon-notify/internal/model"
	"salon-notify/internal/repository"
)

// newTestDB opens a private in-memory database with the full schema.
// The pool is pinned to one connection so every query sees the same
// memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))
	return db
}

type fixture struct {
	db            *gorm.DB
	users         *repository.UserRepository
	bookings      *repository.BookingRepository
	notifications *repository.NotificationRepository
	companies     *repository.CompanyRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:            db,
		users:         repository.NewUserRepository(db),
		bookings:      repository.NewBookingRepository(db),
		notifications: repository.NewNotificationRepository(db),
		companies:     repository.NewCompanyRepository(db),
	}
}

func (f *fixture) reconciler() *Reconciler {
	return NewReconciler(f.db, f.bookings, f.users, f.companies, "MeowNoMeow", "г.Томск, ул.Фрунзе 11Б", time.UTC)
}

func (f *fixture) planner() *Planner {
	return NewPlanner(f.notifications, time.UTC)
}

func (f *fixture) seedUser(t *testing.T, telegramID int64, phone string) model.User {
	t.Helper()
	user := model.User{TelegramID: telegramID, Phone: phone}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) seedCompany(t *testing.T) model.Company {
	t.Helper()
	company, err := f.companies.GetOrCreate(context.Background(), "MeowNoMeow", "г.Томск, ул.Фрунзе 11Б")
	require.NoError(t, err)
	return *company
}

func (f *fixture) seedBooking(t *testing.T, b model.Booking) model.Booking {
	t.Helper()
	if b.CompanyID == 0 {
		b.CompanyID = f.seedCompany(t).ID
	}
	require.NoError(t, f.db.Create(&b).Error)
	return b
}

func (f *fixture) notificationsFor(t *testing.T, bookingID uint) []model.Notification {
	t.Helper()
	var out []model.Notification
	require.NoError(t, f.db.Where("booking_id = ?", bookingID).Order("type").Find(&out).Error)
	return out
}
