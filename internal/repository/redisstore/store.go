// Package redisstore implements the subscriber/event store on Redis. It is
// the default backend for demos and small installs where standing up
// Postgres is overkill.
//
// Layout:
//
//	subscriber:<id>  JSON-encoded subscriber snapshot
//	subscribers      set of all subscriber ids
//	events:<id>      list of JSON-encoded engagement events, append order
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/service/insights"
)

// Store implements insights.Repository against Redis.
type Store struct{ rdb *redis.Client }

// NewStore wraps an existing Redis client.
func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

const subscriberSetKey = "subscribers"

func subscriberKey(id string) string { return "subscriber:" + id }
func eventsKey(id string) string     { return "events:" + id }

func (s *Store) GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error) {
	raw, err := s.rdb.Get(ctx, subscriberKey(id)).Result()
	if err == redis.Nil {
		return nil, insights.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}

	var sub domain.Subscriber
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, fmt.Errorf("decode subscriber %s: %w", id, err)
	}
	return &sub, nil
}

func (s *Store) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	ids, err := s.rdb.SMembers(ctx, subscriberSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list subscriber ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = subscriberKey(id)
	}
	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	out := make([]domain.Subscriber, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Member without a record, likely a partial delete. Skip it.
			continue
		}
		var sub domain.Subscriber
		if err := json.Unmarshal([]byte(str), &sub); err != nil {
			return nil, fmt.Errorf("decode subscriber %s: %w", ids[i], err)
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *Store) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.SubscribedAt.IsZero() {
		sub.SubscribedAt = time.Now()
	}
	sub.UpdatedAt = time.Now()

	if err := s.writeSubscriber(ctx, sub); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, subscriberSetKey, sub.ID).Err(); err != nil {
		return fmt.Errorf("index subscriber: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, p domain.Profile) error {
	sub, err := s.GetSubscriber(ctx, id)
	if err != nil {
		return err
	}
	updated := sub.WithProfile(p)
	updated.UpdatedAt = time.Now()
	return s.writeSubscriber(ctx, &updated)
}

func (s *Store) EventsForSubscriber(ctx context.Context, id string) ([]domain.EngagementEvent, error) {
	raws, err := s.rdb.LRange(ctx, eventsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]domain.EngagementEvent, 0, len(raws))
	for _, raw := range raws {
		var ev domain.EngagementEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *Store) RecordEvent(ctx context.Context, ev *domain.EngagementEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.rdb.RPush(ctx, eventsKey(ev.SubscriberID), data).Err(); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

func (s *Store) writeSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode subscriber: %w", err)
	}
	if err := s.rdb.Set(ctx, subscriberKey(sub.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("write subscriber: %w", err)
	}
	return nil
}
