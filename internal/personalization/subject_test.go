package personalization

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalizeai/engine/internal/domain"
)

func TestPersonalizePerSegment(t *testing.T) {
	p := NewPersonalizer()

	tests := []struct {
		seg  domain.Segment
		want string
	}{
		{domain.SegmentHighEngagement, "🔥 URGENT: Weekly Market Outlook"},
		{domain.SegmentLowEngagement, "Quick Read: Weekly Market Outlook"},
		{domain.SegmentStockFocused, "📈 Stock Alert: Weekly Market Outlook"},
		{domain.SegmentMarketFocused, "🌍 Market Update: Weekly Market Outlook"},
		{domain.SegmentNewsFocused, "📰 Breaking: Weekly Market Outlook"},
	}

	for _, tt := range tests {
		t.Run(string(tt.seg), func(t *testing.T) {
			got, err := p.Personalize("Weekly Market Outlook", tt.seg, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersonalizeHighChurnPrefix(t *testing.T) {
	p := NewPersonalizer()

	got, err := p.Personalize("Earnings Preview", domain.SegmentStockFocused, Options{ChurnRisk: 0.85})
	require.NoError(t, err)
	assert.Equal(t, "Don't Miss: 📈 Stock Alert: Earnings Preview", got)

	got, err = p.Personalize("Earnings Preview", domain.SegmentStockFocused, Options{ChurnRisk: 0.3})
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(got, "Don't Miss:"))
}

func TestPersonalizeLongSubjectTruncated(t *testing.T) {
	p := NewPersonalizer()
	long := strings.Repeat("market analysis ", 10) // 160 chars

	got, err := p.Personalize(long, domain.SegmentLowEngagement, Options{})
	require.NoError(t, err)
	assert.Contains(t, got, "...")
	assert.True(t, strings.HasPrefix(got, "Quick Read: "))
}

func TestPersonalizeTruncateKeepsRuneBoundaries(t *testing.T) {
	p := NewPersonalizer()

	// The en-dash straddles the 60-byte mark, so a byte-indexed cut would
	// split it and emit invalid UTF-8.
	subject := "Markets Today Briefing: Rates Outlook and Sector Moves 7–8% and Beyond"

	got, err := p.Personalize(subject, domain.SegmentLowEngagement, Options{})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Quick Read: Markets Today Briefing: Rates Outlook and Sector Moves 7–...", got)
}

func TestPersonalizeErrors(t *testing.T) {
	p := NewPersonalizer()

	_, err := p.Personalize("", domain.SegmentNewsFocused, Options{})
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = p.Personalize("   ", domain.SegmentNewsFocused, Options{})
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = p.Personalize("Subject", domain.Segment("vip"), Options{})
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestGenerateVariants(t *testing.T) {
	p := NewPersonalizer()
	segments := []domain.Segment{domain.SegmentHighEngagement, domain.SegmentStockFocused}

	set, err := p.GenerateVariants("Fed Decision Tonight", segments)
	require.NoError(t, err)

	assert.Equal(t, "Fed Decision Tonight", set.Control)
	assert.Len(t, set.Variants, 4)
	for _, label := range []string{
		"high_engagement_v1", "high_engagement_v2",
		"stock_focused_v1", "stock_focused_v2",
	} {
		assert.Contains(t, set.Variants, label)
	}
}

func TestGenerateVariantsAllDistinct(t *testing.T) {
	p := NewPersonalizer()

	set, err := p.GenerateVariants("Daily Briefing", domain.AllSegments)
	require.NoError(t, err)

	seen := make(map[string]string)
	for label, text := range set.Variants {
		if prior, dup := seen[text]; dup {
			t.Fatalf("variants %s and %s share text %q", prior, label, text)
		}
		assert.NotEqual(t, set.Control, text, "variant %s equals control", label)
		seen[text] = label
	}
}

func TestGenerateVariantsDuplicateSegmentsCollapsed(t *testing.T) {
	p := NewPersonalizer()

	set, err := p.GenerateVariants("Daily Briefing", []domain.Segment{
		domain.SegmentNewsFocused, domain.SegmentNewsFocused,
	})
	require.NoError(t, err)
	assert.Len(t, set.Variants, 2)
}

func TestGenerateVariantsErrors(t *testing.T) {
	p := NewPersonalizer()

	_, err := p.GenerateVariants("Subject", nil)
	assert.ErrorIs(t, err, ErrNoSegments)

	_, err = p.GenerateVariants("", domain.AllSegments)
	assert.ErrorIs(t, err, ErrEmptySubject)

	_, err = p.GenerateVariants("Subject", []domain.Segment{domain.Segment("bogus")})
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestOptimizeSendTime(t *testing.T) {
	// 3 of 5 opens at 14:00 on Tuesdays -> high confidence.
	tuesday := time.Date(2026, 6, 2, 14, 0, 0, 0, time.UTC)
	events := []domain.EngagementEvent{
		{Type: domain.EventOpened, Timestamp: tuesday},
		{Type: domain.EventOpened, Timestamp: tuesday.AddDate(0, 0, 7)},
		{Type: domain.EventOpened, Timestamp: tuesday.AddDate(0, 0, 14)},
		{Type: domain.EventOpened, Timestamp: tuesday.Add(-5 * time.Hour)},
		{Type: domain.EventOpened, Timestamp: tuesday.AddDate(0, 0, 1).Add(3 * time.Hour)},
		{Type: domain.EventSent, Timestamp: tuesday}, // sends don't count
	}

	rec := OptimizeSendTime(events)
	assert.Equal(t, "14:00", rec.RecommendedTime)
	assert.Equal(t, "high", rec.Confidence)
	assert.Equal(t, "Tuesday", rec.PeakDay)
	assert.InDelta(t, 60.0, rec.ConfidenceScore, 1e-9)
}

func TestOptimizeSendTimeNoOpens(t *testing.T) {
	rec := OptimizeSendTime([]domain.EngagementEvent{
		{Type: domain.EventSent, Timestamp: time.Now()},
	})
	assert.Equal(t, "09:00", rec.RecommendedTime)
	assert.Equal(t, "low", rec.Confidence)
}
