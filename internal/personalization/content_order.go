package personalization

import (
	"sort"

	"github.com/personalizeai/engine/internal/domain"
)

// OrderContent reorders candidate content items so the types a subscriber
// engages with most come first. prefs maps content types to observed
// preference shares; an item scores its own type's share plus the share of
// any tag that names a content type. The sort is stable, so items the
// subscriber has no signal for keep their editorial order, and an empty
// preference map leaves the list untouched.
func OrderContent(items []domain.ContentItem, prefs map[domain.ContentType]float64) []domain.ContentItem {
	ordered := make([]domain.ContentItem, len(items))
	copy(ordered, items)
	if len(prefs) == 0 {
		return ordered
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return contentScore(ordered[i], prefs) > contentScore(ordered[j], prefs)
	})
	return ordered
}

func contentScore(item domain.ContentItem, prefs map[domain.ContentType]float64) float64 {
	score := prefs[item.ContentType]
	for _, tag := range item.Tags {
		score += prefs[domain.ContentType(tag)]
	}
	return score
}
