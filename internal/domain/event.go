package domain

import "time"

// EventType enumerates the engagement event kinds the engine understands.
type EventType string

const (
	EventSent         EventType = "sent"
	EventOpened       EventType = "opened"
	EventClicked      EventType = "clicked"
	EventContentView  EventType = "content_view"
	EventUnsubscribed EventType = "unsubscribed"
)

// EngagementEvent is a single immutable entry in a subscriber's event log.
// Events are append-only; the engine consumes them in read-only aggregation
// windows and never rewrites history.
type EngagementEvent struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	Type         EventType `json:"event_type" db:"event_type"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`

	// ContentType tags the newsletter section the event relates to,
	// empty when the platform didn't report one.
	ContentType ContentType `json:"content_type,omitempty" db:"content_type"`
}
