package domain

import "time"

// SubscriptionTier enumerates the paid tiers a subscriber can hold.
type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierStandard SubscriptionTier = "standard"
	TierPremium  SubscriptionTier = "premium"
)

// Segment enumerates the behavioral segments a subscriber can be assigned.
// A subscriber holds exactly one segment at any time.
type Segment string

const (
	SegmentHighEngagement Segment = "high_engagement"
	SegmentLowEngagement  Segment = "low_engagement"
	SegmentStockFocused   Segment = "stock_focused"
	SegmentMarketFocused  Segment = "market_focused"
	SegmentNewsFocused    Segment = "news_focused"
)

// AllSegments lists every valid segment in priority order.
var AllSegments = []Segment{
	SegmentHighEngagement,
	SegmentLowEngagement,
	SegmentStockFocused,
	SegmentMarketFocused,
	SegmentNewsFocused,
}

// Valid reports whether s is one of the enumerated segments.
func (s Segment) Valid() bool {
	for _, known := range AllSegments {
		if s == known {
			return true
		}
	}
	return false
}

// Subscriber represents a single newsletter recipient. The segment, churn
// risk, and engagement score fields are recomputed by the engine; everything
// else comes from the external store at import time.
type Subscriber struct {
	ID        string           `json:"id" db:"id"`
	Email     string           `json:"email" db:"email"`
	FirstName string           `json:"first_name" db:"first_name"`
	LastName  string           `json:"last_name" db:"last_name"`
	Tier      SubscriptionTier `json:"subscription_tier" db:"subscription_tier"`

	// Declared preferences from signup/preference center.
	ContentPreferences  []ContentType `json:"content_preferences" db:"content_preferences"`
	FrequencyPreference string        `json:"frequency_preference" db:"frequency_preference"`

	// Computed profile fields. Segment is one of AllSegments, ChurnRisk is
	// in [0,1], EngagementScore is in [0,100].
	Segment         Segment `json:"segment" db:"segment"`
	ChurnRisk       float64 `json:"churn_risk" db:"churn_risk"`
	EngagementScore float64 `json:"engagement_score" db:"engagement_score"`

	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the computed slice of a subscriber record. It is applied as an
// explicit write-back step rather than mutated in place, so callers always
// work with immutable snapshots.
type Profile struct {
	Segment         Segment `json:"segment"`
	ChurnRisk       float64 `json:"churn_risk"`
	EngagementScore float64 `json:"engagement_score"`
}

// WithProfile returns a copy of the subscriber with the computed profile
// fields replaced. The receiver is not modified.
func (s Subscriber) WithProfile(p Profile) Subscriber {
	s.Segment = p.Segment
	s.ChurnRisk = p.ChurnRisk
	s.EngagementScore = p.EngagementScore
	return s
}
