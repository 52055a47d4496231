package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"salon-notify/internal/extract"
	"salon-notify/internal/model"
	"salon-notify/internal/normalize"
	"salon-notify/internal/repository"
)

// Stats summarizes one reconciliation cycle.
type Stats struct {
	Created  int
	Changed  int
	Canceled int
}

// Reconciler diffs a scraped snapshot against stored bookings and
// applies the result in a single transaction: new records become
// created bookings, edits to staff/label/link mark the booking changed,
// and a key that vanished from the covered range marks it canceled.
type Reconciler struct {
	db        *gorm.DB
	bookings  *repository.BookingRepository
	users     *repository.UserRepository
	companies *repository.CompanyRepository

	companyName    string
	companyAddress string
	loc            *time.Location
}

func NewReconciler(db *gorm.DB, bookings *repository.BookingRepository, users *repository.UserRepository, companies *repository.CompanyRepository, companyName, companyAddress string, loc *time.Location) *Reconciler {
	return &Reconciler{
		db:             db,
		bookings:       bookings,
		users:          users,
		companies:      companies,
		companyName:    companyName,
		companyAddress: companyAddress,
		loc:            loc,
	}
}

// Reconcile applies one scraped snapshot. All mutations commit together;
// a failed cycle leaves the store untouched.
func (s *Reconciler) Reconcile(ctx context.Context, result extract.Result) (Stats, error) {
	var stats Stats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		users := s.users.WithTx(tx)
		companies := s.companies.WithTx(tx)

		existing, err := bookings.ListAll(ctx)
		if err != nil {
			return err
		}
		index := make(map[model.Key]*model.Booking, len(existing))
		nextSeq := int64(1)
		for i := range existing {
			b := &existing[i]
			index[b.NaturalKey()] = b
			if b.SequenceID >= nextSeq {
				nextSeq = b.SequenceID + 1
			}
		}

		registered, err := users.ListWithPhone(ctx)
		if err != nil {
			return err
		}
		byPhone := make(map[string]model.User, len(registered))
		for _, u := range registered {
			byPhone[normalize.Phone(u.Phone)] = u
		}

		company, err := companies.GetOrCreate(ctx, s.companyName, s.companyAddress)
		if err != nil {
			return err
		}

		seen := make(map[model.Key]bool)
		fresh := make(map[model.Key]bool) // created this cycle

		for _, rec := range result.Bookings {
			if strings.TrimSpace(rec.Phone) == "" {
				// Cannot attribute to anyone; also not evidence of anything.
				continue
			}
			user, ok := byPhone[normalize.Phone(rec.Phone)]
			if !ok {
				// Not registered with the bot yet; their bookings appear
				// on the first cycle after registration.
				continue
			}

			date := canonicalDate(rec.Date)
			clock := normalize.Clock(rec.Time)
			service := strings.TrimSpace(rec.Service)
			key := model.Key{UserID: user.ID, Date: date, Time: clock, Service: service}
			seen[key] = true

			if b := index[key]; b != nil {
				link := strings.TrimSpace(rec.ReferenceLink)
				if link == "" {
					link = b.ReferenceLink
				}
				same := normalize.SameText(rec.Staff, b.Staff) &&
					normalize.SameText(rec.VisitLabel, b.VisitLabel) &&
					normalize.SameText(link, b.ReferenceLink)
				if same {
					continue
				}
				b.Staff = strings.TrimSpace(rec.Staff)
				b.VisitLabel = strings.TrimSpace(rec.VisitLabel)
				b.ReferenceLink = link
				if !fresh[key] {
					// A duplicate key inside one cycle updates the row just
					// created: last record wins, still a single creation.
					b.Status = model.StatusChanged
					stats.Changed++
				}
				if err := bookings.Save(ctx, b); err != nil {
					return err
				}
				continue
			}

			booking := model.Booking{
				SequenceID:    nextSeq,
				UserID:        user.ID,
				CompanyID:     company.ID,
				Service:       service,
				Date:          date,
				Time:          clock,
				Staff:         strings.TrimSpace(rec.Staff),
				ReferenceLink: strings.TrimSpace(rec.ReferenceLink),
				VisitLabel:    strings.TrimSpace(rec.VisitLabel),
				Status:        model.StatusCreated,
			}
			if err := bookings.Create(ctx, &booking); err != nil {
				return err
			}
			nextSeq++
			stats.Created++
			index[key] = &booking
			fresh[key] = true
		}

		// Cancellation by absence: a stored booking whose key was not
		// seen this cycle is gone from the platform. Guarded by the
		// covered range so a partial scrape does not cancel bookings it
		// never looked at.
		for i := range existing {
			b := &existing[i]
			if b.Status == model.StatusCanceled || seen[b.NaturalKey()] {
				continue
			}
			if !s.coveredBy(b.Date, result) {
				continue
			}
			b.Status = model.StatusCanceled
			if err := bookings.Save(ctx, b); err != nil {
				return err
			}
			stats.Canceled++
		}

		return nil
	})
	return stats, err
}

// coveredBy reports whether the booking's date falls inside the range
// the scrape actually read. An empty range means coverage is unknown
// and absence alone is trusted.
func (s *Reconciler) coveredBy(date string, result extract.Result) bool {
	if result.CoveredFrom == "" || result.CoveredTo == "" {
		return true
	}
	day, err := time.ParseInLocation(normalize.DateLayout, normalize.Date(date), s.loc)
	if err != nil {
		return false
	}
	from, err := time.ParseInLocation(normalize.DateLayout, normalize.Date(result.CoveredFrom), s.loc)
	if err != nil {
		return true
	}
	to, err := time.ParseInLocation(normalize.DateLayout, normalize.Date(result.CoveredTo), s.loc)
	if err != nil {
		return true
	}
	return !day.Before(from) && !day.After(to)
}

func canonicalDate(raw string) string {
	if d := normalize.Date(raw); d != "" {
		return d
	}
	return strings.TrimSpace(raw)
}
