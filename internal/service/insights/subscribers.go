package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/personalizeai/engine/internal/domain"
)

// GetSubscriber returns one subscriber snapshot.
func (s *Service) GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error) {
	return s.repo.GetSubscriber(ctx, id)
}

// ListSubscribers returns all subscriber snapshots.
func (s *Service) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	return s.repo.ListSubscribers(ctx)
}

// CreateSubscriber validates and stores a new subscriber. Missing tier
// defaults to free, unknown declared preferences are rejected.
func (s *Service) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	sub.Email = strings.TrimSpace(sub.Email)
	if sub.Email == "" || !strings.Contains(sub.Email, "@") {
		return fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if sub.Tier == "" {
		sub.Tier = domain.TierFree
	}
	for _, p := range sub.ContentPreferences {
		if !p.Valid() {
			return fmt.Errorf("%w: unknown content preference %q", ErrValidation, p)
		}
	}
	return s.repo.CreateSubscriber(ctx, sub)
}

// RecordEvent validates and appends one engagement event. The subscriber
// must exist and the event type must be known.
func (s *Service) RecordEvent(ctx context.Context, ev *domain.EngagementEvent) error {
	if ev.SubscriberID == "" {
		return fmt.Errorf("%w: subscriber id is required", ErrValidation)
	}
	switch ev.Type {
	case domain.EventSent, domain.EventOpened, domain.EventClicked,
		domain.EventContentView, domain.EventUnsubscribed:
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, ev.Type)
	}
	if ev.ContentType != "" && !ev.ContentType.Valid() {
		return fmt.Errorf("%w: unknown content type %q", ErrValidation, ev.ContentType)
	}

	if _, err := s.repo.GetSubscriber(ctx, ev.SubscriberID); err != nil {
		return err
	}
	return s.repo.RecordEvent(ctx, ev)
}
