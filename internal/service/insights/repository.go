package insights

import (
	"context"

	"github.com/personalizeai/engine/internal/domain"
)

// Repository defines the data access contract for the subscriber/event
// store. Implementations must be safe for concurrent use.
//
// Engagement events are append-only: implementations expose recording and
// reading, never rewriting. Subscribers are never deleted by the engine.
type Repository interface {
	// GetSubscriber returns a single subscriber snapshot. Returns
	// ErrNotFound if it doesn't exist.
	GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error)

	// ListSubscribers returns all subscriber snapshots.
	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)

	// CreateSubscriber inserts a new subscriber.
	CreateSubscriber(ctx context.Context, s *domain.Subscriber) error

	// UpdateProfile applies the computed profile fields to the stored
	// subscriber record. Returns ErrNotFound if the subscriber doesn't
	// exist.
	UpdateProfile(ctx context.Context, id string, p domain.Profile) error

	// EventsForSubscriber returns the subscriber's full event history, in
	// any order.
	EventsForSubscriber(ctx context.Context, id string) ([]domain.EngagementEvent, error)

	// RecordEvent appends one engagement event to the log.
	RecordEvent(ctx context.Context, ev *domain.EngagementEvent) error
}
