package service

import (
	"context"
	"log"
	"time"

	"salon-notify/internal/model"
	"salon-notify/internal/repository"
)

// Channel delivers one message to a recipient. Implemented by the
// Telegram bot; faked in tests.
type Channel interface {
	Send(ctx context.Context, recipientID int64, text string) error
}

// Dispatcher polls for due, unsent notifications and sends them. Each
// notification commits independently: a failed send leaves its row
// unsent for the next cycle and never blocks the others.
type Dispatcher struct {
	notifications *repository.NotificationRepository
	bookings      *repository.BookingRepository
	users         *repository.UserRepository
	companies     *repository.CompanyRepository
	channel       Channel
	links         TemplateLinks
}

func NewDispatcher(notifications *repository.NotificationRepository, bookings *repository.BookingRepository, users *repository.UserRepository, companies *repository.CompanyRepository, channel Channel, links TemplateLinks) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		bookings:      bookings,
		users:         users,
		companies:     companies,
		channel:       channel,
		links:         links,
	}
}

// DispatchDue processes every notification due at now.
func (s *Dispatcher) DispatchDue(ctx context.Context, now time.Time) error {
	due, err := s.notifications.ListDue(ctx, now)
	if err != nil {
		return err
	}
	for _, n := range due {
		if err := s.dispatchOne(ctx, n.ID); err != nil {
			log.Printf("[info] notification %d: %v", n.ID, err)
		}
	}
	return nil
}

func (s *Dispatcher) dispatchOne(ctx context.Context, id uint) error {
	// Re-fetch as of dispatch time; state may have moved since selection.
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if n.Sent {
		return nil
	}
	booking, err := s.bookings.FindByID(ctx, n.BookingID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, booking.UserID)
	if err != nil {
		return err
	}
	company, err := s.companies.FindByID(ctx, booking.CompanyID)
	if err != nil {
		return err
	}

	// Placeholder accounts never receive messages.
	if user.TelegramID < 0 {
		return s.notifications.MarkSent(ctx, n.ID)
	}
	// Cancellation supersedes stale reminders.
	if booking.Status == model.StatusCanceled && model.ReminderType(n.Type) {
		return s.notifications.MarkSent(ctx, n.ID)
	}

	text := renderMessage(n.Type, booking, company, s.links)
	if text == "" {
		log.Printf("[info] notification %d: unknown type %q", n.ID, n.Type)
		return s.notifications.MarkSent(ctx, n.ID)
	}

	err = withRetry(ctx, "send", 2, 2*time.Second, func(c context.Context) error {
		return s.channel.Send(c, user.TelegramID, text)
	})
	if err != nil {
		// Stay unsent; the next dispatch cycle retries.
		return err
	}
	return s.notifications.MarkSent(ctx, n.ID)
}
