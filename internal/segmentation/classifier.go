// Package segmentation assigns subscribers to behavioral segments and
// estimates churn risk from aggregated engagement metrics. Both computations
// are deterministic: identical inputs always produce identical outputs.
package segmentation

import (
	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/engagement"
)

// preferenceBuckets maps each declared content type to the preference-driven
// segment it votes for. Kept as a table so the mapping can be inspected and
// tested independently of the classification algorithm.
var preferenceBuckets = map[domain.ContentType]domain.Segment{
	domain.ContentStockAnalysis:       domain.SegmentStockFocused,
	domain.ContentStockRecommendation: domain.SegmentStockFocused,
	domain.ContentMarketCommentary:    domain.SegmentMarketFocused,
	domain.ContentEconomicAnalysis:    domain.SegmentMarketFocused,
	domain.ContentNews:                domain.SegmentNewsFocused,
	domain.ContentBreakingNews:        domain.SegmentNewsFocused,
}

// bucketPriority breaks ties between preference buckets. Fixed order keeps
// classification deterministic when vote counts are equal.
var bucketPriority = []domain.Segment{
	domain.SegmentStockFocused,
	domain.SegmentMarketFocused,
	domain.SegmentNewsFocused,
}

// Classifier assigns segments using configured thresholds.
type Classifier struct {
	cfg config.SegmentationConfig
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg config.SegmentationConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the one segment for a subscriber. Precedence, first match
// wins:
//
//  1. high open AND click rates        -> high_engagement
//  2. open rate below the low bar      -> low_engagement
//  3. dominant declared preference     -> stock/market/news_focused
//  4. dominant observed preference     -> stock/market/news_focused
//  5. fallback                         -> market_focused
//
// The fallback avoids an unclassified state; market_focused is the broadest
// audience for a financial publisher.
func (c *Classifier) Classify(m engagement.Metrics, declared []domain.ContentType, observed map[domain.ContentType]float64) domain.Segment {
	if m.OpenRate >= c.cfg.HighEngagementOpenRate && m.ClickRate >= c.cfg.HighEngagementClickRate {
		return domain.SegmentHighEngagement
	}
	if m.OpenRate < c.cfg.LowEngagementOpenRate {
		return domain.SegmentLowEngagement
	}

	if seg, ok := dominantDeclared(declared); ok {
		return seg
	}
	if seg, ok := dominantObserved(observed); ok {
		return seg
	}

	return domain.SegmentMarketFocused
}

// dominantDeclared tallies declared preference tags into buckets and returns
// the winning segment, if any tag voted.
func dominantDeclared(declared []domain.ContentType) (domain.Segment, bool) {
	votes := make(map[domain.Segment]int)
	for _, ct := range declared {
		if seg, ok := preferenceBuckets[ct]; ok {
			votes[seg]++
		}
	}
	return winner(votes)
}

// dominantObserved tallies observed preference shares into buckets. Used when
// a subscriber declared nothing but their history shows a clear interest.
func dominantObserved(observed map[domain.ContentType]float64) (domain.Segment, bool) {
	shares := make(map[domain.Segment]float64)
	for ct, share := range observed {
		if seg, ok := preferenceBuckets[ct]; ok {
			shares[seg] += share
		}
	}

	var best domain.Segment
	bestShare := 0.0
	for _, seg := range bucketPriority {
		if shares[seg] > bestShare {
			best = seg
			bestShare = shares[seg]
		}
	}
	return best, bestShare > 0
}

func winner(votes map[domain.Segment]int) (domain.Segment, bool) {
	var best domain.Segment
	bestVotes := 0
	for _, seg := range bucketPriority {
		if votes[seg] > bestVotes {
			best = seg
			bestVotes = votes[seg]
		}
	}
	return best, bestVotes > 0
}
