package prediction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
)

func newPredictor() *Predictor {
	return NewPredictor(config.Default().Prediction)
}

func TestPredictContentTypeAffinity(t *testing.T) {
	p := newPredictor()
	item := domain.ContentItem{
		Title:       "Quarterly Portfolio Review",
		ContentType: domain.ContentStockAnalysis,
	}

	results, err := p.Predict(item, []domain.Segment{
		domain.SegmentStockFocused,
		domain.SegmentNewsFocused,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// stock_analysis has affinity with stock_focused but not news_focused.
	assert.Greater(t, results[domain.SegmentStockFocused].Factors.ContentTypeMatch, 0.0)
	assert.Zero(t, results[domain.SegmentNewsFocused].Factors.ContentTypeMatch)

	// The mismatched segment must get an alignment recommendation.
	joined := strings.Join(results[domain.SegmentNewsFocused].Recommendations, " ")
	assert.Contains(t, joined, "aligning content type")
}

func TestPredictKeywordRelevance(t *testing.T) {
	p := newPredictor()
	item := domain.ContentItem{
		Title:       "Stock price target raised after earnings beat",
		ContentType: domain.ContentStockAnalysis,
		Tags:        []string{"buy"},
	}

	results, err := p.Predict(item, []domain.Segment{domain.SegmentStockFocused})
	require.NoError(t, err)

	r := results[domain.SegmentStockFocused]
	// Matches: stock, price, target, earnings (title) + buy (tag) = 25,
	// capped at 20.
	assert.Equal(t, 20.0, r.Factors.KeywordRelevance)
	assert.Equal(t, "high", r.Confidence)
	// 75 base + 15 type + 20 keywords = 110, clamped.
	assert.Equal(t, 100.0, r.PredictedEngagement)
}

func TestPredictConfidenceLevels(t *testing.T) {
	p := newPredictor()

	tests := []struct {
		name string
		item domain.ContentItem
		seg  domain.Segment
		want string
	}{
		{
			name: "all three factors",
			item: domain.ContentItem{Title: "Breaking market news", ContentType: domain.ContentBreakingNews},
			seg:  domain.SegmentNewsFocused,
			want: "high",
		},
		{
			name: "base plus type match only",
			item: domain.ContentItem{Title: "Commodity supercycle outlook", ContentType: domain.ContentMarketCommentary},
			seg:  domain.SegmentMarketFocused,
			want: "medium",
		},
		{
			name: "base only",
			item: domain.ContentItem{Title: "Commodity supercycle outlook", ContentType: domain.ContentEducational},
			seg:  domain.SegmentMarketFocused,
			want: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := p.Predict(tt.item, []domain.Segment{tt.seg})
			require.NoError(t, err)
			assert.Equal(t, tt.want, results[tt.seg].Confidence)
		})
	}
}

func TestPredictAllAffinitySegment(t *testing.T) {
	p := newPredictor()
	item := domain.ContentItem{Title: "Anything at all", ContentType: domain.ContentEducational}

	results, err := p.Predict(item, []domain.Segment{domain.SegmentHighEngagement})
	require.NoError(t, err)

	// high_engagement has "all" affinity, every content type matches.
	assert.Greater(t, results[domain.SegmentHighEngagement].Factors.ContentTypeMatch, 0.0)
}

func TestPredictLowKeywordRecommendation(t *testing.T) {
	p := newPredictor()
	item := domain.ContentItem{Title: "Quiet title with no matches", ContentType: domain.ContentStockAnalysis}

	results, err := p.Predict(item, []domain.Segment{domain.SegmentStockFocused})
	require.NoError(t, err)

	joined := strings.Join(results[domain.SegmentStockFocused].Recommendations, " ")
	assert.Contains(t, joined, "keywords or tags")
}

func TestPredictValidation(t *testing.T) {
	p := newPredictor()

	_, err := p.Predict(domain.ContentItem{ContentType: domain.ContentNews}, []domain.Segment{domain.SegmentNewsFocused})
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = p.Predict(domain.ContentItem{Title: "Title"}, nil)
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestPredictUnknownSegmentSkipped(t *testing.T) {
	p := newPredictor()
	item := domain.ContentItem{Title: "Title", ContentType: domain.ContentNews}

	results, err := p.Predict(item, []domain.Segment{domain.Segment("vip"), domain.SegmentNewsFocused})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Contains(t, results, domain.SegmentNewsFocused)
}
