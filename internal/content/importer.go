// Package content ingests publisher RSS/Atom feeds and maps entries onto
// the engine's content model so fresh articles can be scored without manual
// entry.
package content

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/pkg/httpretry"
)

// Importer pulls a publisher feed and converts entries to content items.
// Feed fetches retry with backoff, publisher CDNs rate-limit aggressively.
type Importer struct {
	parser *gofeed.Parser
	client httpretry.HTTPDoer
	cfg    config.FeedConfig
}

// NewImporter creates a feed importer with the configured timeout.
func NewImporter(cfg config.FeedConfig) *Importer {
	return &Importer{
		parser: gofeed.NewParser(),
		client: httpretry.NewRetryClient(&http.Client{Timeout: cfg.Timeout()}, 3),
		cfg:    cfg,
	}
}

// Fetch pulls the configured feed and returns up to MaxItems content items,
// newest first as published by the feed.
func (i *Importer) Fetch(ctx context.Context) ([]domain.ContentItem, error) {
	if i.cfg.URL == "" {
		return nil, fmt.Errorf("no feed url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", "personalizeai-engine/1.0")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", i.cfg.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", i.cfg.URL, resp.StatusCode)
	}

	feed, err := i.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", i.cfg.URL, err)
	}

	max := i.cfg.MaxItems
	if max <= 0 || max > len(feed.Items) {
		max = len(feed.Items)
	}

	out := make([]domain.ContentItem, 0, max)
	for _, item := range feed.Items[:max] {
		out = append(out, FromFeedItem(item))
	}
	return out, nil
}

// FromFeedItem maps one feed entry onto a content item. Feed categories
// become tags, and the content type is inferred from categories first, then
// from the title.
func FromFeedItem(item *gofeed.Item) domain.ContentItem {
	tags := make([]string, 0, len(item.Categories))
	for _, cat := range item.Categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if cat != "" {
			tags = append(tags, cat)
		}
	}

	return domain.ContentItem{
		Title:       strings.TrimSpace(item.Title),
		ContentType: InferType(item.Title, tags),
		Tags:        tags,
	}
}

// typeSignals maps marker phrases to content types, checked in order. The
// first hit wins, so more specific signals come first.
var typeSignals = []struct {
	markers []string
	ctype   domain.ContentType
}{
	{[]string{"breaking", "alert", "just in"}, domain.ContentBreakingNews},
	{[]string{"buy", "sell", "rating", "upgrade", "downgrade", "recommendation", "pick"}, domain.ContentStockRecommendation},
	{[]string{"stock", "shares", "earnings", "ticker", "ipo"}, domain.ContentStockAnalysis},
	{[]string{"fed", "inflation", "gdp", "economy", "economic", "rates"}, domain.ContentEconomicAnalysis},
	{[]string{"how to", "guide", "explained", "101", "basics"}, domain.ContentEducational},
	{[]string{"market", "outlook", "trend", "week ahead"}, domain.ContentMarketCommentary},
}

// InferType guesses the content type from an entry's title and tags.
// Unclassifiable entries fall back to general news.
func InferType(title string, tags []string) domain.ContentType {
	haystack := strings.ToLower(title)
	for _, tag := range tags {
		haystack += " " + strings.ToLower(tag)
	}

	for _, sig := range typeSignals {
		for _, marker := range sig.markers {
			if strings.Contains(haystack, marker) {
				return sig.ctype
			}
		}
	}
	return domain.ContentNews
}
