package service

import (
	"context"
	"log"
	"time"
)

// withRetry runs fn up to attempts times, sleeping backoff between
// tries. External calls (scrape, send) go through here so a transient
// failure is visible in logs instead of silently swallowed.
func withRetry(ctx context.Context, label string, attempts int, backoff time.Duration, fn func(context.Context) error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		log.Printf("[info] %s attempt %d failed, retrying: %v", label, i+1, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
