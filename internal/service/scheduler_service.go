package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs. Each scheduled job is
// non-reentrant: a tick that arrives while the previous run is still in
// flight is skipped, so a slow scrape never stacks cycles.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a periodic job every given duration. With
// immediate set, the job also runs once right away.
func (s *SchedulerService) ScheduleInterval(name string, interval time.Duration, immediate bool, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	guarded := skipIfRunning(name, job)
	// Convert to cron spec: every N seconds.
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	id, err := s.cron.AddFunc(spec, guarded)
	if err != nil {
		return 0, err
	}
	if immediate {
		go guarded()
	}
	return id, nil
}

// skipIfRunning makes job non-reentrant: overlapping invocations are
// dropped with a log line rather than queued.
func skipIfRunning(name string, job func()) func() {
	var mu sync.Mutex
	return func() {
		if !mu.TryLock() {
			log.Printf("[info] %s: previous run still in progress, skipping", name)
			return
		}
		defer mu.Unlock()
		job()
	}
}
