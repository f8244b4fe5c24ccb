// Package financial converts projected engagement deltas into revenue lift
// and ROI figures. All calculations are pure functions of their inputs and
// the configured model constants; results are recomputed on every request and
// never cached.
package financial

import (
	"sort"

	"github.com/personalizeai/engine/internal/config"
)

// Baseline holds the pre-personalization metrics for one subscriber. Rates
// are percentages; revenue and cost basis are annual dollars.
type Baseline struct {
	OpenRate      float64 `json:"open_rate"`
	ClickRate     float64 `json:"click_rate"`
	AnnualRevenue float64 `json:"avg_annual_revenue"`
	CostBasis     float64 `json:"cost_basis"`
}

// Improvements holds the modeled personalization deltas, as percentages.
type Improvements struct {
	OpenRateImprovement  float64 `json:"open_rate_improvement"`
	ClickRateImprovement float64 `json:"click_rate_improvement"`

	// EngagementScore is the weighted combination of the two improvement
	// percentages, used purely as a reporting figure.
	EngagementScore float64 `json:"engagement_score"`
}

// RevenueImpact is the dollar outcome for one subscriber. ROIPercentage is
// nil when the cost basis is zero or absent: the figure is undefined, never
// a division by zero.
type RevenueImpact struct {
	BaselineAnnualRevenue float64  `json:"baseline_annual_revenue"`
	ImprovedAnnualRevenue float64  `json:"improved_annual_revenue"`
	AnnualRevenueLift     float64  `json:"annual_revenue_lift"`
	ROIPercentage         *float64 `json:"roi_percentage"`
}

// SubscriberImpact is the full per-subscriber result payload.
type SubscriberImpact struct {
	SubscriberID      string        `json:"subscriber_id"`
	Baseline          Baseline      `json:"baseline_metrics"`
	ImprovedOpenRate  float64       `json:"improved_open_rate"`
	ImprovedClickRate float64       `json:"improved_click_rate"`
	Improvements      Improvements  `json:"improvements"`
	Impact            RevenueImpact `json:"revenue_impact"`
}

// ItemError records one subscriber's failure inside an aggregate run.
type ItemError struct {
	SubscriberID string `json:"subscriber_id"`
	Error        string `json:"error"`
}

// AggregateImpact sums impacts across subscribers.
//
// AggregateROIPercentage (total lift over total cost) and
// MeanSubscriberROIPercentage (arithmetic mean of per-subscriber ROI) are
// different numbers whenever cost bases differ across subscribers; callers
// must not conflate them.
type AggregateImpact struct {
	TotalSubscribers     int     `json:"total_subscribers"`
	TotalBaselineRevenue float64 `json:"total_baseline_revenue"`
	TotalImprovedRevenue float64 `json:"total_improved_revenue"`
	TotalRevenueLift     float64 `json:"total_revenue_lift"`
	TotalCostBasis       float64 `json:"total_cost_basis"`

	AggregateROIPercentage      *float64 `json:"aggregate_roi_percentage"`
	MeanSubscriberROIPercentage *float64 `json:"mean_subscriber_roi_percentage"`

	SubscriberImpacts []SubscriberImpact `json:"subscriber_impacts,omitempty"`
	Errors            []ItemError        `json:"errors,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// Calculator computes revenue impact using the configured model constants.
type Calculator struct {
	cfg config.RevenueConfig
}

// NewCalculator creates a calculator with the given model constants.
func NewCalculator(cfg config.RevenueConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute derives the projected revenue impact for one subscriber:
//
//	improved_rate    = baseline_rate * (1 + improvement_factor)
//	engagement_score = weighted mean of the improvement percentages
//	improved_revenue = baseline_revenue * (1 + engagement_score/100 * sensitivity)
//	roi              = lift / cost_basis * 100   (undefined on zero cost)
func (c *Calculator) Compute(subscriberID string, b Baseline) SubscriberImpact {
	if b.AnnualRevenue == 0 {
		b.AnnualRevenue = c.cfg.DefaultAnnualRevenue
	}

	openImprovementPct := c.cfg.OpenRateImprovement * 100
	clickImprovementPct := c.cfg.ClickRateImprovement * 100

	weightSum := c.cfg.OpenWeight + c.cfg.ClickWeight
	engagementScore := 0.0
	if weightSum > 0 {
		engagementScore = (openImprovementPct*c.cfg.OpenWeight + clickImprovementPct*c.cfg.ClickWeight) / weightSum
	}

	improvedRevenue := b.AnnualRevenue * (1 + engagementScore/100*c.cfg.RevenueSensitivity)
	lift := improvedRevenue - b.AnnualRevenue

	impact := RevenueImpact{
		BaselineAnnualRevenue: b.AnnualRevenue,
		ImprovedAnnualRevenue: improvedRevenue,
		AnnualRevenueLift:     lift,
	}
	if b.CostBasis > 0 {
		roi := lift / b.CostBasis * 100
		impact.ROIPercentage = &roi
	}

	return SubscriberImpact{
		SubscriberID:      subscriberID,
		Baseline:          b,
		ImprovedOpenRate:  b.OpenRate * (1 + c.cfg.OpenRateImprovement),
		ImprovedClickRate: b.ClickRate * (1 + c.cfg.ClickRateImprovement),
		Improvements: Improvements{
			OpenRateImprovement:  openImprovementPct,
			ClickRateImprovement: clickImprovementPct,
			EngagementScore:      engagementScore,
		},
		Impact: impact,
	}
}

// Aggregate combines per-subscriber impacts. Failed subscribers arrive as
// itemErrors and are excluded from the sums. Impacts are typically produced
// by a concurrent fan-out, so both lists are sorted by subscriber ID here to
// keep the payload deterministic.
func (c *Calculator) Aggregate(impacts []SubscriberImpact, itemErrors []ItemError) *AggregateImpact {
	sort.Slice(impacts, func(i, j int) bool {
		return impacts[i].SubscriberID < impacts[j].SubscriberID
	})
	sort.Slice(itemErrors, func(i, j int) bool {
		return itemErrors[i].SubscriberID < itemErrors[j].SubscriberID
	})

	agg := &AggregateImpact{
		TotalSubscribers:  len(impacts),
		SubscriberImpacts: impacts,
		Errors:            itemErrors,
	}

	roiSum := 0.0
	roiCount := 0
	for _, si := range impacts {
		agg.TotalBaselineRevenue += si.Impact.BaselineAnnualRevenue
		agg.TotalImprovedRevenue += si.Impact.ImprovedAnnualRevenue
		agg.TotalRevenueLift += si.Impact.AnnualRevenueLift
		agg.TotalCostBasis += si.Baseline.CostBasis

		if si.Impact.ROIPercentage != nil {
			roiSum += *si.Impact.ROIPercentage
			roiCount++
		}

		// Sanity check: click-through measured against sends should not
		// exceed the open rate for newsletter traffic.
		if si.Baseline.ClickRate > si.Baseline.OpenRate {
			agg.Warnings = append(agg.Warnings,
				"subscriber "+si.SubscriberID+": baseline click rate exceeds open rate")
		}
	}

	if agg.TotalCostBasis > 0 {
		roi := agg.TotalRevenueLift / agg.TotalCostBasis * 100
		agg.AggregateROIPercentage = &roi
	}
	if roiCount > 0 {
		mean := roiSum / float64(roiCount)
		agg.MeanSubscriberROIPercentage = &mean
	}

	return agg
}
