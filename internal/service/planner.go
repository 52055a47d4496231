package service

import (
	"context"
	"errors"
	"log"
	"time"

	"salon-notify/internal/model"
	"salon-notify/internal/normalize"
	"salon-notify/internal/repository"
)

const (
	afterVisitDelay  = 2 * time.Hour
	afterVisitWindow = 7 * 24 * time.Hour
	rebookDelay      = 14 * 24 * time.Hour
	dayBeforeLead    = 24 * time.Hour
	reminderLead     = 3 * time.Hour
	confirmationLead = 14 * 24 * time.Hour
)

// Planner derives the notifications a booking should have after a
// lifecycle transition and persists them idempotently. One-shot types
// (created, changed, canceled, after_visit, rebook_14) are inserted at
// most once ever; the reminder trio is upserted with recomputed fire
// times while unsent.
type Planner struct {
	notifications *repository.NotificationRepository
	loc           *time.Location
}

func NewPlanner(notifications *repository.NotificationRepository, loc *time.Location) *Planner {
	return &Planner{notifications: notifications, loc: loc}
}

// Plan is invoked once per booking that changed status this cycle.
func (s *Planner) Plan(ctx context.Context, booking *model.Booking, now time.Time) error {
	if booking.Status == model.StatusCanceled {
		// No date parsing needed: the cancellation note goes out as-is.
		return s.ensureOnce(ctx, booking.ID, model.NotifyCanceled, now)
	}

	visitAt, err := normalize.VisitTime(booking.Date, booking.Time, s.loc)
	if err != nil {
		log.Printf("[info] booking %d: planning skipped: %v", booking.ID, err)
		return nil
	}
	state := normalize.ClassifyVisit(booking.VisitLabel)

	if booking.Status == model.StatusCreated && visitAt.After(now) {
		if err := s.ensureOnce(ctx, booking.ID, model.NotifyCreated, now); err != nil {
			return err
		}
	}

	if booking.Status == model.StatusChanged && state == normalize.VisitCompleted {
		if err := s.ensureOnce(ctx, booking.ID, model.NotifyChanged, now); err != nil {
			return err
		}
		sinceVisit := now.Sub(visitAt)
		if sinceVisit >= 0 && sinceVisit <= afterVisitWindow {
			fireAt := visitAt.Add(afterVisitDelay)
			if fireAt.Before(now) {
				fireAt = now
			}
			if err := s.ensureOnce(ctx, booking.ID, model.NotifyAfterVisit, fireAt); err != nil {
				return err
			}
		}
		if rebookAt := visitAt.Add(rebookDelay); rebookAt.After(now) {
			if err := s.ensureOnce(ctx, booking.ID, model.NotifyRebook14, rebookAt); err != nil {
				return err
			}
		}
	}

	if state != normalize.VisitCompleted && state != normalize.VisitCanceled && visitAt.After(now) {
		reminders := []struct {
			typ    string
			fireAt time.Time
		}{
			{model.NotifyDayBefore, visitAt.Add(-dayBeforeLead)},
			{model.NotifyReminder, visitAt.Add(-reminderLead)},
			{model.NotifyConfirmation, visitAt.Add(-confirmationLead)},
		}
		for _, r := range reminders {
			if !r.fireAt.After(now) {
				continue
			}
			if err := s.upsertReminder(ctx, booking.ID, r.typ, r.fireAt); err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureOnce inserts a notification unless one for (booking, type)
// already exists, sent or not. These types fire at most once ever.
func (s *Planner) ensureOnce(ctx context.Context, bookingID uint, typ string, fireAt time.Time) error {
	existing, err := s.notifications.FindAny(ctx, bookingID, typ)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	err = s.notifications.Create(ctx, &model.Notification{
		BookingID: bookingID,
		Type:      typ,
		FireAt:    fireAt,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent planner run; the row exists.
		return nil
	}
	return err
}

// upsertReminder keeps exactly one pending reminder of the type: an
// unsent row gets its fire time moved, a sent row stays untouched, and
// the uniqueness constraint absorbs insert races.
func (s *Planner) upsertReminder(ctx context.Context, bookingID uint, typ string, fireAt time.Time) error {
	pending, err := s.notifications.FindUnsent(ctx, bookingID, typ)
	if err != nil {
		return err
	}
	if pending != nil {
		if pending.FireAt.Equal(fireAt) {
			return nil
		}
		return s.notifications.UpdateFireAt(ctx, pending.ID, fireAt)
	}
	err = s.notifications.Create(ctx, &model.Notification{
		BookingID: bookingID,
		Type:      typ,
		FireAt:    fireAt,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	return err
}
