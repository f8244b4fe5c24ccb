package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/service/insights"
)

// SubscriberRepo implements insights.Repository against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

const subscriberColumns = `
	id, email, COALESCE(first_name,''), COALESCE(last_name,''),
	subscription_tier, content_preferences, COALESCE(frequency_preference,''),
	COALESCE(segment,''), churn_risk, engagement_score,
	subscribed_at, updated_at`

func (r *SubscriberRepo) GetSubscriber(ctx context.Context, id string) (*domain.Subscriber, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		WHERE id = $1
	`, id)

	sub, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return nil, insights.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	return sub, nil
}

func (r *SubscriberRepo) ListSubscribers(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		ORDER BY subscribed_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) CreateSubscriber(ctx context.Context, s *domain.Subscriber) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now()
	}

	prefs := make([]string, len(s.ContentPreferences))
	for i, p := range s.ContentPreferences {
		prefs[i] = string(p)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers
			(id, email, first_name, last_name, subscription_tier,
			 content_preferences, frequency_preference, segment,
			 churn_risk, engagement_score, subscribed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`, s.ID, s.Email, s.FirstName, s.LastName, s.Tier,
		pq.Array(prefs), s.FrequencyPreference, s.Segment,
		s.ChurnRisk, s.EngagementScore, s.SubscribedAt)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) UpdateProfile(ctx context.Context, id string, p domain.Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET segment = $1, churn_risk = $2, engagement_score = $3, updated_at = NOW()
		WHERE id = $4
	`, p.Segment, p.ChurnRisk, p.EngagementScore, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return insights.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepo) EventsForSubscriber(ctx context.Context, id string) ([]domain.EngagementEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscriber_id, event_type, event_timestamp, COALESCE(content_type,'')
		FROM engagement_events
		WHERE subscriber_id = $1
		ORDER BY event_timestamp
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.EngagementEvent
	for rows.Next() {
		var ev domain.EngagementEvent
		if err := rows.Scan(&ev.ID, &ev.SubscriberID, &ev.Type, &ev.Timestamp, &ev.ContentType); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) RecordEvent(ctx context.Context, ev *domain.EngagementEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO engagement_events (id, subscriber_id, event_type, event_timestamp, content_type)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.ID, ev.SubscriberID, ev.Type, ev.Timestamp, ev.ContentType)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscriber(row rowScanner) (*domain.Subscriber, error) {
	var (
		sub   domain.Subscriber
		prefs pq.StringArray
	)
	if err := row.Scan(
		&sub.ID, &sub.Email, &sub.FirstName, &sub.LastName,
		&sub.Tier, &prefs, &sub.FrequencyPreference,
		&sub.Segment, &sub.ChurnRisk, &sub.EngagementScore,
		&sub.SubscribedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	for _, p := range prefs {
		sub.ContentPreferences = append(sub.ContentPreferences, domain.ContentType(p))
	}
	return &sub, nil
}
