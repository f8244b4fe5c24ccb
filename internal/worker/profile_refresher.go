// Package worker runs the engine's background maintenance loops.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/personalizeai/engine/internal/pkg/distlock"
	"github.com/personalizeai/engine/internal/service/insights"
)

// ProfileRefresher periodically recomputes every subscriber's segment,
// churn risk, and engagement score so stored profiles track event history
// even when nobody calls the classify endpoints. The distributed lock keeps
// exactly one instance refreshing when several servers share a store.
type ProfileRefresher struct {
	svc      *insights.Service
	lock     distlock.DistLock
	interval time.Duration
}

// NewProfileRefresher creates a refresher. A nil lock means single-instance
// deployment and skips lock acquisition.
func NewProfileRefresher(svc *insights.Service, lock distlock.DistLock, interval time.Duration) *ProfileRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ProfileRefresher{svc: svc, lock: lock, interval: interval}
}

// Start runs the refresh loop until ctx is cancelled.
func (r *ProfileRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[worker.ProfileRefresher] started, interval %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[worker.ProfileRefresher] stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *ProfileRefresher) runOnce(ctx context.Context) {
	if r.lock != nil {
		acquired, err := r.lock.Acquire(ctx)
		if err != nil {
			log.Printf("[worker.ProfileRefresher] lock error: %v", err)
			return
		}
		if !acquired {
			// Another instance is refreshing.
			return
		}
		defer func() {
			if err := r.lock.Release(ctx); err != nil {
				log.Printf("[worker.ProfileRefresher] unlock error: %v", err)
			}
		}()
	}

	subs, err := r.svc.ListSubscribers(ctx)
	if err != nil {
		log.Printf("[worker.ProfileRefresher] list subscribers: %v", err)
		return
	}

	refreshed := 0
	for _, sub := range subs {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.svc.RefreshProfile(ctx, sub.ID); err != nil {
			log.Printf("[worker.ProfileRefresher] refresh %s: %v", sub.ID, err)
			continue
		}
		refreshed++
	}
	log.Printf("[worker.ProfileRefresher] refreshed %d/%d profiles", refreshed, len(subs))
}
