package personalization

import (
	"fmt"

	"github.com/personalizeai/engine/internal/domain"
)

// SendTimeRecommendation is the result of send-time optimization for a
// subscriber.
type SendTimeRecommendation struct {
	RecommendedTime    string      `json:"recommended_time"` // "HH:00", UTC
	Confidence         string      `json:"confidence"`       // low/medium/high
	PeakDay            string      `json:"peak_day,omitempty"`
	Analysis           string      `json:"analysis"`
	ConfidenceScore    float64     `json:"confidence_score,omitempty"` // percent of opens in peak hour
	HourlyDistribution map[int]int `json:"hourly_distribution,omitempty"`
}

// defaultSendTime is used when a subscriber has no open history.
const defaultSendTime = "09:00"

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// OptimizeSendTime finds a subscriber's modal open hour and weekday. Ties go
// to the earliest hour/day so the recommendation is deterministic.
func OptimizeSendTime(events []domain.EngagementEvent) SendTimeRecommendation {
	hourCounts := make(map[int]int)
	dayCounts := make(map[int]int)
	totalOpens := 0

	for _, ev := range events {
		if ev.Type != domain.EventOpened {
			continue
		}
		ts := ev.Timestamp.UTC()
		hourCounts[ts.Hour()]++
		dayCounts[int(ts.Weekday())]++
		totalOpens++
	}

	if totalOpens == 0 {
		return SendTimeRecommendation{
			RecommendedTime: defaultSendTime,
			Confidence:      "low",
			Analysis:        "Insufficient data for optimization; using default morning time",
		}
	}

	peakHour := modalKey(hourCounts)
	peakDay := modalKey(dayCounts)
	share := float64(hourCounts[peakHour]) / float64(totalOpens)

	confidence := "low"
	switch {
	case share > 0.4:
		confidence = "high"
	case share > 0.25:
		confidence = "medium"
	}

	return SendTimeRecommendation{
		RecommendedTime:    fmt.Sprintf("%02d:00", peakHour),
		Confidence:         confidence,
		PeakDay:            dayNames[peakDay],
		Analysis:           fmt.Sprintf("Peak engagement at %02d:00 on %ss", peakHour, dayNames[peakDay]),
		ConfidenceScore:    share * 100,
		HourlyDistribution: hourCounts,
	}
}

// modalKey returns the key with the highest count, lowest key on ties.
func modalKey(counts map[int]int) int {
	best, bestCount := 0, -1
	for k := 0; k < 24; k++ {
		if c, ok := counts[k]; ok && c > bestCount {
			best, bestCount = k, c
		}
	}
	return best
}
