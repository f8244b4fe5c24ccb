package segmentation

import (
	"math"
	"time"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/engagement"
)

// ChurnEstimator derives a churn probability from engagement metrics,
// recency, and the subscriber's segment. The model is a weighted linear
// combination with no randomness; repeated calls with identical inputs
// return identical results.
type ChurnEstimator struct {
	cfg config.ChurnConfig
}

// NewChurnEstimator creates an estimator with the given weights.
func NewChurnEstimator(cfg config.ChurnConfig) *ChurnEstimator {
	return &ChurnEstimator{cfg: cfg}
}

// Estimate returns a churn probability in [0,1].
//
// Base risk is the inverse of the open rate scaled by BaseWeight. Days since
// the last event beyond the staleness threshold add a capped per-day penalty,
// so risk is monotonic non-decreasing in recency. The segment adjustment adds
// a penalty for low_engagement and subtracts a bonus for high_engagement.
func (e *ChurnEstimator) Estimate(m engagement.Metrics, seg domain.Segment, now time.Time) float64 {
	openRate := m.OpenRate
	if openRate > 100 {
		openRate = 100
	}
	risk := (1 - openRate/100) * e.cfg.BaseWeight

	risk += e.recencyPenalty(m.LastEventAt, now)

	switch seg {
	case domain.SegmentLowEngagement:
		risk += e.cfg.LowEngagementPenalty
	case domain.SegmentHighEngagement:
		risk -= e.cfg.HighEngagementBonus
	}

	return clamp01(risk)
}

// recencyPenalty charges for each full day past the staleness threshold,
// capped. A subscriber with no events at all is treated as maximally stale.
func (e *ChurnEstimator) recencyPenalty(lastEventAt *time.Time, now time.Time) float64 {
	if lastEventAt == nil {
		return e.cfg.RecencyPenaltyCap
	}

	days := math.Floor(now.Sub(*lastEventAt).Hours() / 24)
	stale := days - float64(e.cfg.StalenessThresholdDays)
	if stale <= 0 {
		return 0
	}

	penalty := stale * e.cfg.RecencyPenaltyPerDay
	if penalty > e.cfg.RecencyPenaltyCap {
		penalty = e.cfg.RecencyPenaltyCap
	}
	return penalty
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
