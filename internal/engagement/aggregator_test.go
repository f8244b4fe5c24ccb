package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
)

func event(typ domain.EventType, ts time.Time, ct domain.ContentType) domain.EngagementEvent {
	return domain.EngagementEvent{
		SubscriberID: "sub-1",
		Type:         typ,
		Timestamp:    ts,
		ContentType:  ct,
	}
}

func TestAggregateZeroSends(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		events []domain.EngagementEvent
	}{
		{"no events", nil},
		{"only opens", []domain.EngagementEvent{event(domain.EventOpened, now, "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Aggregate(tt.events)
			assert.True(t, m.InsufficientData)
			assert.Zero(t, m.OpenRate)
			assert.Zero(t, m.ClickRate)
			assert.Zero(t, m.SendCount)
		})
	}
}

func TestAggregateRates(t *testing.T) {
	now := time.Now()
	var events []domain.EngagementEvent
	for i := 0; i < 10; i++ {
		events = append(events, event(domain.EventSent, now.Add(time.Duration(i)*time.Hour), ""))
	}
	for i := 0; i < 4; i++ {
		events = append(events, event(domain.EventOpened, now.Add(time.Duration(i)*time.Hour), domain.ContentStockAnalysis))
	}
	events = append(events, event(domain.EventClicked, now.Add(30*time.Hour), domain.ContentNews))

	m := Aggregate(events)
	assert.False(t, m.InsufficientData)
	assert.Equal(t, 10, m.SendCount)
	assert.InDelta(t, 40.0, m.OpenRate, 1e-9)
	assert.InDelta(t, 10.0, m.ClickRate, 1e-9)
}

func TestAggregateLastEventAtUnordered(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	latest := base.Add(72 * time.Hour)

	// Deliberately out of order; the aggregator must sort internally.
	events := []domain.EngagementEvent{
		event(domain.EventOpened, latest, ""),
		event(domain.EventSent, base, ""),
		event(domain.EventSent, base.Add(24*time.Hour), ""),
	}

	m := Aggregate(events)
	assert.NotNil(t, m.LastEventAt)
	assert.True(t, m.LastEventAt.Equal(latest))
}

func TestScoreWindowing(t *testing.T) {
	cfg := config.Default().Engagement
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Old events fall outside the 30-day window and must not count.
	old := now.AddDate(0, 0, -90)
	events := []domain.EngagementEvent{
		event(domain.EventSent, old, ""),
		event(domain.EventOpened, old, ""),
	}
	assert.Zero(t, Score(events, now, cfg))

	// All sends opened and clicked within the window: 30 + 40 = 70.
	recent := now.AddDate(0, 0, -5)
	events = []domain.EngagementEvent{
		event(domain.EventSent, recent, ""),
		event(domain.EventOpened, recent, ""),
		event(domain.EventClicked, recent, ""),
	}
	assert.InDelta(t, 70.0, Score(events, now, cfg), 1e-9)
}

func TestScoreClampedTo100(t *testing.T) {
	cfg := config.EngagementConfig{WindowDays: 30, OpenWeight: 80, ClickWeight: 80, ViewWeight: 80}
	now := time.Now()
	events := []domain.EngagementEvent{
		event(domain.EventSent, now, ""),
		event(domain.EventOpened, now, ""),
		event(domain.EventClicked, now, ""),
		event(domain.EventContentView, now, ""),
	}
	assert.Equal(t, 100.0, Score(events, now, cfg))
}

func TestPreferences(t *testing.T) {
	now := time.Now()
	events := []domain.EngagementEvent{
		event(domain.EventSent, now, domain.ContentNews), // sends never count
		event(domain.EventOpened, now, domain.ContentStockAnalysis),
		event(domain.EventOpened, now, domain.ContentStockAnalysis),
		event(domain.EventClicked, now, domain.ContentStockAnalysis),
		event(domain.EventOpened, now, domain.ContentNews),
		event(domain.EventOpened, now, ""), // untagged events ignored
	}

	prefs := Preferences(events)
	assert.InDelta(t, 75.0, prefs[domain.ContentStockAnalysis], 1e-9)
	assert.InDelta(t, 25.0, prefs[domain.ContentNews], 1e-9)
	assert.Len(t, prefs, 2)
}
