// Package prediction scores candidate content items against target segments
// using configured rule tables: a per-segment engagement baseline, a
// content-type affinity bonus, and a capped keyword-relevance contribution.
package prediction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
)

// Sentinel errors for the predictor.
var (
	ErrNoSegments   = errors.New("at least one target segment is required")
	ErrMissingTitle = errors.New("content title is required")
)

// Factors breaks a prediction down into its contributing components.
type Factors struct {
	BaseSegmentEngagement float64 `json:"base_segment_engagement"`
	ContentTypeMatch      float64 `json:"content_type_match"`
	KeywordRelevance      float64 `json:"keyword_relevance"`
}

// Prediction is the per-segment result of scoring a content item.
type Prediction struct {
	PredictedEngagement float64  `json:"predicted_engagement"` // 0-100
	Confidence          string   `json:"confidence"`           // low/medium/high
	Factors             Factors  `json:"factors"`
	Recommendations     []string `json:"recommendations"`
}

// Predictor scores content items using the configured rule tables.
type Predictor struct {
	cfg config.PredictionConfig
}

// NewPredictor creates a predictor with the given rule tables.
func NewPredictor(cfg config.PredictionConfig) *Predictor {
	return &Predictor{cfg: cfg}
}

// Predict scores the item for every target segment. An unknown segment (one
// with no base-engagement entry) is skipped rather than failing the batch.
func (p *Predictor) Predict(item domain.ContentItem, segments []domain.Segment) (map[domain.Segment]Prediction, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, ErrMissingTitle
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	results := make(map[domain.Segment]Prediction)
	for _, seg := range segments {
		base, ok := p.cfg.BaseEngagement[seg]
		if !ok {
			continue
		}
		results[seg] = p.predictOne(item, seg, base)
	}
	return results, nil
}

func (p *Predictor) predictOne(item domain.ContentItem, seg domain.Segment, base float64) Prediction {
	typeBonus := p.contentTypeMatch(item.ContentType, seg)
	keywordBonus := p.keywordRelevance(item, seg)

	total := base + typeBonus + keywordBonus
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	factors := Factors{
		BaseSegmentEngagement: base,
		ContentTypeMatch:      typeBonus,
		KeywordRelevance:      keywordBonus,
	}

	return Prediction{
		PredictedEngagement: total,
		Confidence:          confidence(factors),
		Factors:             factors,
		Recommendations:     p.recommendations(total, factors, item, seg),
	}
}

// contentTypeMatch returns the fixed affinity bonus when the item's content
// type is in the segment's affinity set ("all" matches everything).
func (p *Predictor) contentTypeMatch(ct domain.ContentType, seg domain.Segment) float64 {
	for _, affinity := range p.cfg.Affinity[seg] {
		if affinity == config.AffinityAll || affinity == string(ct) {
			return p.cfg.ContentTypeMatchBonus
		}
	}
	return 0
}

// keywordRelevance scores keyword-interest overlap: fixed points per keyword
// appearing in the title or tag set, capped.
func (p *Predictor) keywordRelevance(item domain.ContentItem, seg domain.Segment) float64 {
	titleLower := strings.ToLower(item.Title)
	tagsLower := make(map[string]bool, len(item.Tags))
	for _, tag := range item.Tags {
		tagsLower[strings.ToLower(tag)] = true
	}

	score := 0.0
	for _, kw := range p.cfg.Keywords[seg] {
		if strings.Contains(titleLower, kw) || tagsLower[kw] {
			score += p.cfg.KeywordPointsPerMatch
		}
	}
	if score > p.cfg.KeywordRelevanceCap {
		score = p.cfg.KeywordRelevanceCap
	}
	return score
}

// confidence grades a prediction by how many factors contributed: all three
// present is high, two is medium, one or zero is low.
func confidence(f Factors) string {
	n := 0
	for _, v := range []float64{f.BaseSegmentEngagement, f.ContentTypeMatch, f.KeywordRelevance} {
		if v > 0 {
			n++
		}
	}
	switch {
	case n == 3:
		return "high"
	case n == 2:
		return "medium"
	default:
		return "low"
	}
}

// recommendations generates optimization advice by rule.
func (p *Predictor) recommendations(score float64, f Factors, item domain.ContentItem, seg domain.Segment) []string {
	var recs []string

	if f.ContentTypeMatch == 0 {
		recs = append(recs, fmt.Sprintf("Content type %q has no affinity with the %s segment; consider aligning content type with segment interests", item.ContentType, seg))
	}
	if f.KeywordRelevance < p.cfg.KeywordRelevanceFloor {
		recs = append(recs, fmt.Sprintf("Add %s-relevant keywords or tags to improve relevance", seg))
	}
	if score < 50 {
		recs = append(recs, "Shorten the title for better mobile readability")
	}
	if score < 70 {
		recs = append(recs, "Add urgency or exclusivity elements to increase appeal")
	}

	switch seg {
	case domain.SegmentLowEngagement:
		recs = append(recs,
			"Simplify language and add a 'Quick Read' indicator",
			"Include estimated reading time")
	case domain.SegmentHighEngagement:
		recs = append(recs,
			"Add premium insights or exclusive data",
			"Include actionable takeaways")
	}

	return recs
}
