package service

import (
	"context"
	"log"
	"time"
)

type expiredRowStore interface {
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
	DeleteExpiredPendingUsers(ctx context.Context) (int64, error)
}

// Reaper purges expired refresh tokens and pending registrations on an
// interval. Lookups already filter by expiry, so this only keeps storage
// from growing; a failed sweep is retried on the next tick.
type Reaper struct {
	store    expiredRowStore
	interval time.Duration
}

func NewReaper(store expiredRowStore, interval time.Duration) *Reaper {
	return &Reaper{store: store, interval: interval}
}

// Run blocks until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	tokens, err := r.store.DeleteExpiredRefreshTokens(ctx)
	if err != nil {
		log.Printf("[Reaper] Failed to delete expired refresh tokens: %v", err)
	}

	pending, err := r.store.DeleteExpiredPendingUsers(ctx)
	if err != nil {
		log.Printf("[Reaper] Failed to delete expired pending registrations: %v", err)
	}

	if tokens > 0 || pending > 0 {
		log.Printf("[Reaper] Purged %d refresh tokens, %d pending registrations", tokens, pending)
	}
}
