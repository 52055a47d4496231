package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"salon-notify/internal/extract"
	"salon-notify/internal/model"
	"salon-notify/internal/repository"
)

// SyncService runs one full reconciliation cycle: scrape the platform,
// diff against the store, then plan notifications for every booking
// that transitioned. A scrape failure aborts the cycle before any store
// mutation; the next timer tick retries from scratch.
type SyncService struct {
	extractor  extract.Extractor
	reconciler *Reconciler
	planner    *Planner
	bookings   *repository.BookingRepository
	timeout    time.Duration
}

func NewSyncService(extractor extract.Extractor, reconciler *Reconciler, planner *Planner, bookings *repository.BookingRepository, timeout time.Duration) *SyncService {
	return &SyncService{
		extractor:  extractor,
		reconciler: reconciler,
		planner:    planner,
		bookings:   bookings,
		timeout:    timeout,
	}
}

// RunCycle performs scrape, reconcile and planning once.
func (s *SyncService) RunCycle(ctx context.Context) (Stats, error) {
	scrapeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var result extract.Result
	err := withRetry(scrapeCtx, "scrape", 2, 5*time.Second, func(c context.Context) error {
		r, err := s.extractor.Scrape(c)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scrape: %w", err)
	}

	stats, err := s.reconciler.Reconcile(ctx, result)
	if err != nil {
		return stats, fmt.Errorf("reconcile: %w", err)
	}
	log.Printf("[info] sync: created %d, changed %d, canceled %d", stats.Created, stats.Changed, stats.Canceled)

	transitioned, err := s.bookings.ListByStatus(ctx, model.StatusCreated, model.StatusChanged, model.StatusCanceled)
	if err != nil {
		return stats, err
	}
	now := time.Now()
	for i := range transitioned {
		b := &transitioned[i]
		if err := s.planner.Plan(ctx, b, now); err != nil {
			// Leave the status as-is so the next cycle replans.
			log.Printf("[info] booking %d: plan: %v", b.ID, err)
			continue
		}
		if b.Status == model.StatusCreated || b.Status == model.StatusChanged {
			if err := s.bookings.SetStatus(ctx, b.ID, model.StatusActive); err != nil {
				log.Printf("[info] booking %d: reset status: %v", b.ID, err)
			}
		}
	}

	return stats, nil
}
