package personalization

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/personalizeai/engine/internal/domain"
)

func TestOrderContentPreferredTypesFirst(t *testing.T) {
	items := []domain.ContentItem{
		{Title: "Morning Headlines", ContentType: domain.ContentNews},
		{Title: "Fed Outlook", ContentType: domain.ContentEconomicAnalysis},
		{Title: "NVDA Deep Dive", ContentType: domain.ContentStockAnalysis},
	}
	prefs := map[domain.ContentType]float64{
		domain.ContentStockAnalysis:    60,
		domain.ContentEconomicAnalysis: 30,
		domain.ContentNews:             10,
	}

	ordered := OrderContent(items, prefs)

	assert.Equal(t, "NVDA Deep Dive", ordered[0].Title)
	assert.Equal(t, "Fed Outlook", ordered[1].Title)
	assert.Equal(t, "Morning Headlines", ordered[2].Title)
}

func TestOrderContentTagsAddToScore(t *testing.T) {
	items := []domain.ContentItem{
		{Title: "Macro Wrap", ContentType: domain.ContentMarketCommentary},
		{Title: "Earnings Recap", ContentType: domain.ContentMarketCommentary,
			Tags: []string{"stock_analysis"}},
	}
	prefs := map[domain.ContentType]float64{
		domain.ContentMarketCommentary: 40,
		domain.ContentStockAnalysis:    20,
	}

	ordered := OrderContent(items, prefs)
	assert.Equal(t, "Earnings Recap", ordered[0].Title)
}

func TestOrderContentNoPreferencesKeepsOrder(t *testing.T) {
	items := []domain.ContentItem{
		{Title: "First", ContentType: domain.ContentNews},
		{Title: "Second", ContentType: domain.ContentEducational},
	}

	ordered := OrderContent(items, nil)
	assert.Equal(t, items, ordered)

	// Unscored items keep their editorial order even when others move.
	mixed := append(items, domain.ContentItem{
		Title: "Third", ContentType: domain.ContentStockAnalysis,
	})
	ordered = OrderContent(mixed, map[domain.ContentType]float64{
		domain.ContentStockAnalysis: 50,
	})
	assert.Equal(t, "Third", ordered[0].Title)
	assert.Equal(t, "First", ordered[1].Title)
	assert.Equal(t, "Second", ordered[2].Title)
}

func TestOrderContentDoesNotMutateInput(t *testing.T) {
	items := []domain.ContentItem{
		{Title: "B", ContentType: domain.ContentNews},
		{Title: "A", ContentType: domain.ContentStockAnalysis},
	}

	OrderContent(items, map[domain.ContentType]float64{domain.ContentStockAnalysis: 90})
	assert.Equal(t, "B", items[0].Title)
}
