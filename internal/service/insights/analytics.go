package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/engagement"
)

// DailyTrend is one day of aggregate engagement activity.
type DailyTrend struct {
	Date      string  `json:"date"`
	Opens     int     `json:"opens"`
	Clicks    int     `json:"clicks"`
	OpenRate  float64 `json:"open_rate"`
	ClickRate float64 `json:"click_rate"`
}

// ChurnDistribution buckets subscribers by churn risk.
type ChurnDistribution struct {
	Low    int `json:"low"`    // risk < 0.40
	Medium int `json:"medium"` // 0.40 <= risk < 0.70
	High   int `json:"high"`   // risk >= 0.70
}

// DashboardAnalytics is the publisher dashboard payload.
type DashboardAnalytics struct {
	TotalSubscribers      int                    `json:"total_subscribers"`
	OverallOpenRate       float64                `json:"overall_open_rate"`
	OverallClickRate      float64                `json:"overall_click_rate"`
	SegmentDistribution   map[domain.Segment]int `json:"segments"`
	ChurnRiskDistribution ChurnDistribution      `json:"churn_risk_distribution"`
	DailyTrends           []DailyTrend           `json:"daily_trends"`
	TotalEvents           int                    `json:"total_events"`
}

// Dashboard computes publisher-wide analytics over the trailing window.
func (s *Service) Dashboard(ctx context.Context, days int) (*DashboardAnalytics, error) {
	if days <= 0 {
		days = 30
	}

	subs, err := s.repo.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -days)

	dash := &DashboardAnalytics{
		TotalSubscribers:    len(subs),
		SegmentDistribution: make(map[domain.Segment]int),
	}

	var totalSends, totalOpens, totalClicks int
	dailyOpens := make(map[string]int)
	dailyClicks := make(map[string]int)

	for _, sub := range subs {
		events, err := s.repo.EventsForSubscriber(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("load events for %s: %w", sub.ID, err)
		}

		for _, ev := range events {
			if ev.Timestamp.Before(cutoff) {
				continue
			}
			dash.TotalEvents++
			day := ev.Timestamp.UTC().Format("2006-01-02")
			switch ev.Type {
			case domain.EventSent:
				totalSends++
			case domain.EventOpened:
				totalOpens++
				dailyOpens[day]++
			case domain.EventClicked:
				totalClicks++
				dailyClicks[day]++
			}
		}

		if sub.Segment != "" {
			dash.SegmentDistribution[sub.Segment]++
		}
		switch {
		case sub.ChurnRisk >= 0.70:
			dash.ChurnRiskDistribution.High++
		case sub.ChurnRisk >= 0.40:
			dash.ChurnRiskDistribution.Medium++
		default:
			dash.ChurnRiskDistribution.Low++
		}
	}

	if totalSends > 0 {
		dash.OverallOpenRate = float64(totalOpens) / float64(totalSends) * 100
		dash.OverallClickRate = float64(totalClicks) / float64(totalSends) * 100
	}

	// Last 7 days, oldest first. Daily rates are per-subscriber reach, the
	// convention publisher dashboards report.
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).UTC().Format("2006-01-02")
		trend := DailyTrend{Date: day, Opens: dailyOpens[day], Clicks: dailyClicks[day]}
		if len(subs) > 0 {
			trend.OpenRate = float64(trend.Opens) / float64(len(subs)) * 100
			trend.ClickRate = float64(trend.Clicks) / float64(len(subs)) * 100
		}
		dash.DailyTrends = append(dash.DailyTrends, trend)
	}

	return dash, nil
}

// KeyInsight is one observation surfaced to the publisher.
type KeyInsight struct {
	Type    string `json:"type"`
	Insight string `json:"insight"`
	Impact  string `json:"impact"` // low/medium/high
}

// Recommendation is one actionable suggestion for the publisher.
type Recommendation struct {
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
	ExpectedImpact string `json:"expected_impact"`
	Priority       string `json:"priority"`
}

// PublisherInsights is the actionable intelligence payload.
type PublisherInsights struct {
	Period                  string           `json:"period"`
	GeneratedAt             time.Time        `json:"generated_at"`
	KeyInsights             []KeyInsight     `json:"key_insights"`
	Recommendations         []Recommendation `json:"recommendations"`
	TotalRevenueOpportunity float64          `json:"total_revenue_opportunity"`
}

// Insights generates publisher-level observations and recommendations over
// the trailing window: engagement timing, top segment, and the aggregate
// revenue opportunity of personalization.
func (s *Service) Insights(ctx context.Context, days int) (*PublisherInsights, error) {
	if days <= 0 {
		days = 30
	}

	subs, err := s.repo.ListSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -days)
	out := &PublisherInsights{
		Period:      fmt.Sprintf("Last %d days", days),
		GeneratedAt: now,
	}

	hourCounts := make(map[int]int)
	dayCounts := make(map[int]int)
	segScores := make(map[domain.Segment][]float64)

	for _, sub := range subs {
		events, err := s.repo.EventsForSubscriber(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("load events for %s: %w", sub.ID, err)
		}
		for _, ev := range events {
			if ev.Timestamp.Before(cutoff) {
				continue
			}
			if ev.Type == domain.EventOpened || ev.Type == domain.EventClicked {
				ts := ev.Timestamp.UTC()
				hourCounts[ts.Hour()]++
				dayCounts[int(ts.Weekday())]++
			}
		}
		if sub.Segment != "" {
			segScores[sub.Segment] = append(segScores[sub.Segment], engagement.Score(events, now, s.cfg.Engagement))
		}
	}

	if len(hourCounts) > 0 {
		peakHour := modalInt(hourCounts)
		peakDay := modalInt(dayCounts)
		dayName := time.Weekday(peakDay).String()

		out.KeyInsights = append(out.KeyInsights, KeyInsight{
			Type:    "timing",
			Insight: fmt.Sprintf("Peak engagement occurs at %02d:00 on %ss", peakHour, dayName),
			Impact:  "high",
		})
		out.Recommendations = append(out.Recommendations, Recommendation{
			Category:       "send_timing",
			Recommendation: fmt.Sprintf("Schedule newsletters for %02d:00 on %ss for maximum engagement", peakHour, dayName),
			ExpectedImpact: "+15-25% open rate improvement",
			Priority:       "high",
		})
	}

	if top, avg, ok := topSegment(segScores); ok {
		out.KeyInsights = append(out.KeyInsights, KeyInsight{
			Type:    "segmentation",
			Insight: fmt.Sprintf("The %s segment shows the highest engagement (%.1f)", top, avg),
			Impact:  "high",
		})
		out.Recommendations = append(out.Recommendations, Recommendation{
			Category:       "content_strategy",
			Recommendation: fmt.Sprintf("Create more content targeting %s preferences", top),
			ExpectedImpact: "+20-30% engagement for targeted content",
			Priority:       "high",
		})
	}

	agg, err := s.ComputeAggregateRevenueImpact(ctx, nil)
	if err != nil {
		return nil, err
	}
	out.TotalRevenueOpportunity = agg.TotalRevenueLift
	if agg.TotalRevenueLift > 0 {
		out.KeyInsights = append(out.KeyInsights, KeyInsight{
			Type:    "revenue_optimization",
			Insight: fmt.Sprintf("Personalization could generate $%.0f additional annual revenue", agg.TotalRevenueLift),
			Impact:  "high",
		})
	}

	return out, nil
}

func modalInt(counts map[int]int) int {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	best, bestCount := 0, -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

func topSegment(scores map[domain.Segment][]float64) (domain.Segment, float64, bool) {
	var best domain.Segment
	bestAvg := -1.0
	for _, seg := range domain.AllSegments {
		vals := scores[seg]
		if len(vals) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		if avg := sum / float64(len(vals)); avg > bestAvg {
			best, bestAvg = seg, avg
		}
	}
	return best, bestAvg, bestAvg >= 0
}
