// Package engagement reduces raw per-subscriber event history into rate
// metrics, engagement scores, and observed content preferences. Everything
// here is a pure function of the supplied events.
package engagement

import (
	"sort"
	"time"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
)

// Metrics is the aggregated view of a subscriber's event history. Rates are
// percentages (0-100) measured against sends, per newsletter-platform
// reporting convention: click rate is clicks/sends, not clicks/opens.
type Metrics struct {
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
	SendCount int     `json:"send_count"`
	Opens     int     `json:"opens"`
	Clicks    int     `json:"clicks"`
	Views     int     `json:"views"`

	LastEventAt *time.Time `json:"last_event_at,omitempty"`

	// InsufficientData is set when no sends are on record; both rates are
	// reported as zero rather than failing on a division.
	InsufficientData bool `json:"insufficient_data"`
}

// Aggregate reduces an event history into Metrics. The input may arrive in
// any order; events are sorted by timestamp before reduction.
func Aggregate(events []domain.EngagementEvent) Metrics {
	sorted := make([]domain.EngagementEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var m Metrics
	for _, ev := range sorted {
		switch ev.Type {
		case domain.EventSent:
			m.SendCount++
		case domain.EventOpened:
			m.Opens++
		case domain.EventClicked:
			m.Clicks++
		case domain.EventContentView:
			m.Views++
		}
	}

	if len(sorted) > 0 {
		last := sorted[len(sorted)-1].Timestamp
		m.LastEventAt = &last
	}

	if m.SendCount == 0 {
		m.InsufficientData = true
		return m
	}

	m.OpenRate = float64(m.Opens) / float64(m.SendCount) * 100
	m.ClickRate = float64(m.Clicks) / float64(m.SendCount) * 100
	return m
}

// Score computes a 0-100 engagement score over the configured trailing
// window: opens, clicks, and content views weighted per cfg, each rate
// capped at 100% before weighting.
func Score(events []domain.EngagementEvent, now time.Time, cfg config.EngagementConfig) float64 {
	cutoff := now.AddDate(0, 0, -cfg.WindowDays)

	var windowed []domain.EngagementEvent
	for _, ev := range events {
		if !ev.Timestamp.Before(cutoff) {
			windowed = append(windowed, ev)
		}
	}

	m := Aggregate(windowed)
	if m.InsufficientData {
		return 0
	}

	openRate := capRatio(m.Opens, m.SendCount)
	clickRate := capRatio(m.Clicks, m.SendCount)
	viewRate := capRatio(m.Views, m.SendCount)

	score := openRate*cfg.OpenWeight + clickRate*cfg.ClickWeight + viewRate*cfg.ViewWeight
	if score > 100 {
		score = 100
	}
	return score
}

func capRatio(n, d int) float64 {
	r := float64(n) / float64(d)
	if r > 1 {
		return 1
	}
	return r
}

// Preferences analyzes a subscriber's observed content preferences from
// engagement history. The result maps each content type seen on an open,
// click, or view event to its share of those events, as a percentage.
func Preferences(events []domain.EngagementEvent) map[domain.ContentType]float64 {
	counts := make(map[domain.ContentType]int)
	total := 0
	for _, ev := range events {
		if ev.ContentType == "" {
			continue
		}
		switch ev.Type {
		case domain.EventOpened, domain.EventClicked, domain.EventContentView:
			counts[ev.ContentType]++
			total++
		}
	}

	prefs := make(map[domain.ContentType]float64, len(counts))
	for ct, n := range counts {
		prefs[ct] = float64(n) / float64(total) * 100
	}
	return prefs
}
