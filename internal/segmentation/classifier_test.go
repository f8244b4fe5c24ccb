package segmentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/engagement"
)

func metrics(openRate, clickRate float64) engagement.Metrics {
	return engagement.Metrics{OpenRate: openRate, ClickRate: clickRate, SendCount: 100}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier(config.Default().Segmentation)

	tests := []struct {
		name     string
		m        engagement.Metrics
		declared []domain.ContentType
		want     domain.Segment
	}{
		{
			name: "high open and click rates win over preferences",
			m:    metrics(50, 8),
			declared: []domain.ContentType{
				domain.ContentStockAnalysis,
				domain.ContentStockRecommendation,
			},
			want: domain.SegmentHighEngagement,
		},
		{
			name: "high open rate alone is not enough",
			m:    metrics(50, 2),
			want: domain.SegmentMarketFocused,
		},
		{
			name: "low open rate wins over preferences",
			m:    metrics(10, 1),
			declared: []domain.ContentType{
				domain.ContentNews,
				domain.ContentBreakingNews,
			},
			want: domain.SegmentLowEngagement,
		},
		{
			name:     "stock preference majority",
			m:        metrics(25, 3),
			declared: []domain.ContentType{domain.ContentStockAnalysis, domain.ContentStockRecommendation, domain.ContentNews},
			want:     domain.SegmentStockFocused,
		},
		{
			name:     "news preference majority",
			m:        metrics(25, 3),
			declared: []domain.ContentType{domain.ContentNews, domain.ContentBreakingNews, domain.ContentStockAnalysis},
			want:     domain.SegmentNewsFocused,
		},
		{
			name:     "tie broken by fixed priority: stock before market",
			m:        metrics(25, 3),
			declared: []domain.ContentType{domain.ContentStockAnalysis, domain.ContentMarketCommentary},
			want:     domain.SegmentStockFocused,
		},
		{
			name: "no preferences falls back to market_focused",
			m:    metrics(25, 3),
			want: domain.SegmentMarketFocused,
		},
		{
			name:     "educational tags carry no vote",
			m:        metrics(25, 3),
			declared: []domain.ContentType{domain.ContentEducational},
			want:     domain.SegmentMarketFocused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.m, tt.declared, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyObservedPreferencesFallback(t *testing.T) {
	c := NewClassifier(config.Default().Segmentation)

	observed := map[domain.ContentType]float64{
		domain.ContentNews:         55,
		domain.ContentStockAnalysis: 20,
	}
	got := c.Classify(metrics(25, 3), nil, observed)
	assert.Equal(t, domain.SegmentNewsFocused, got)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(config.Default().Segmentation)
	m := metrics(25, 3)
	declared := []domain.ContentType{domain.ContentMarketCommentary, domain.ContentEconomicAnalysis}

	first := c.Classify(m, declared, nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(m, declared, nil))
	}
}

func TestChurnMonotonicInRecency(t *testing.T) {
	e := NewChurnEstimator(config.Default().Churn)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	prev := -1.0
	for days := 0; days <= 120; days += 5 {
		last := now.AddDate(0, 0, -days)
		m := metrics(25, 3)
		m.LastEventAt = &last

		risk := e.Estimate(m, domain.SegmentMarketFocused, now)
		assert.GreaterOrEqual(t, risk, prev, "risk dropped at %d days", days)
		assert.GreaterOrEqual(t, risk, 0.0)
		assert.LessOrEqual(t, risk, 1.0)
		prev = risk
	}
}

func TestChurnSegmentAdjustments(t *testing.T) {
	e := NewChurnEstimator(config.Default().Churn)
	now := time.Now()
	last := now.AddDate(0, 0, -1)
	m := metrics(25, 3)
	m.LastEventAt = &last

	mid := e.Estimate(m, domain.SegmentMarketFocused, now)
	low := e.Estimate(m, domain.SegmentLowEngagement, now)
	high := e.Estimate(m, domain.SegmentHighEngagement, now)

	assert.Greater(t, low, mid)
	assert.Less(t, high, mid)
}

func TestChurnNoEventsMaxStale(t *testing.T) {
	cfg := config.Default().Churn
	e := NewChurnEstimator(cfg)

	m := engagement.Metrics{InsufficientData: true}
	risk := e.Estimate(m, domain.SegmentLowEngagement, time.Now())

	// Full inverse-open-rate base + recency cap + low engagement penalty,
	// clamped to 1.
	want := clamp01(cfg.BaseWeight + cfg.RecencyPenaltyCap + cfg.LowEngagementPenalty)
	assert.InDelta(t, want, risk, 1e-9)
}

func TestChurnDeterministic(t *testing.T) {
	e := NewChurnEstimator(config.Default().Churn)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -30)
	m := metrics(18, 2)
	m.LastEventAt = &last

	first := e.Estimate(m, domain.SegmentLowEngagement, now)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, e.Estimate(m, domain.SegmentLowEngagement, now))
	}
}
