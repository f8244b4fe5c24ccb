// Package personalization produces segment-tailored subject lines and
// send-time recommendations. Subject transforms are Liquid templates driven
// by a per-segment rule table, so copywriting can be tuned without touching
// the selection logic.
package personalization

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/osteele/liquid"

	"github.com/personalizeai/engine/internal/domain"
)

// Sentinel errors for the personalizer.
var (
	ErrUnknownSegment = errors.New("unknown segment")
	ErrEmptySubject   = errors.New("base subject is required")
	ErrNoSegments     = errors.New("at least one segment is required")
)

// Strategy is one named subject transform for a segment. The template is
// Liquid source rendered with a "subject" binding.
type Strategy struct {
	Name     string
	Template string
}

// ruleTable holds the subject strategies per segment. Every segment gets at
// least two distinct strategies so A/B generation always has a v1 and v2.
var ruleTable = map[domain.Segment][]Strategy{
	domain.SegmentHighEngagement: {
		{Name: "urgency", Template: "🔥 URGENT: {{ subject }}"},
		{Name: "exclusivity", Template: "🎯 EXCLUSIVE: {{ subject }} - Members Only"},
	},
	domain.SegmentLowEngagement: {
		{Name: "simplicity", Template: "Quick Read: {{ subject | truncate: 60 }}"},
		{Name: "curiosity", Template: "Just 2 Minutes: {{ subject | truncate: 60 }} (No Fluff)"},
	},
	domain.SegmentStockFocused: {
		{Name: "data_driven", Template: "📈 Stock Alert: {{ subject }}"},
		{Name: "opportunity", Template: "💰 Profit Opportunity: {{ subject }} - Price Target Inside"},
	},
	domain.SegmentMarketFocused: {
		{Name: "macro_insight", Template: "🌍 Market Update: {{ subject }}"},
		{Name: "impact", Template: "📊 Trend Alert: {{ subject }} - What It Means"},
	},
	domain.SegmentNewsFocused: {
		{Name: "breaking", Template: "📰 Breaking: {{ subject }}"},
		{Name: "just_in", Template: "⚡ Just In: {{ subject }} - Key Details"},
	},
}

// churnUrgencyPrefix is prepended for subscribers at high churn risk.
const churnUrgencyPrefix = "Don't Miss: "

// highChurnThreshold is the churn probability above which the urgency prefix
// applies.
const highChurnThreshold = 0.7

// Personalizer renders segment-tailored subject lines with Liquid templates.
// Safe for concurrent use.
type Personalizer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewPersonalizer creates a personalizer with the engine's custom filters
// registered.
func NewPersonalizer() *Personalizer {
	engine := liquid.NewEngine()

	// Truncate with ellipsis: {{ subject | truncate: 60 }}. Counts runes,
	// not bytes, so a multi-byte character is never split mid-sequence.
	engine.RegisterFilter("truncate", func(s string, length int) string {
		runes := []rune(s)
		if len(runes) <= length {
			return s
		}
		if length <= 3 {
			return string(runes[:length])
		}
		return string(runes[:length-3]) + "..."
	})

	return &Personalizer{engine: engine}
}

// Options carries subscriber context for a personalized render.
type Options struct {
	ChurnRisk float64
}

// Personalize builds one segment-tailored subject line from the base subject
// using the segment's primary strategy. High-churn subscribers additionally
// get an urgency prefix.
func (p *Personalizer) Personalize(baseSubject string, seg domain.Segment, opt Options) (string, error) {
	if strings.TrimSpace(baseSubject) == "" {
		return "", ErrEmptySubject
	}
	strategies, ok := ruleTable[seg]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSegment, seg)
	}

	out, err := p.render(strategies[0].Template, baseSubject)
	if err != nil {
		return "", err
	}

	if opt.ChurnRisk >= highChurnThreshold {
		out = churnUrgencyPrefix + out
	}
	return out, nil
}

// VariantSet is the result of A/B variant generation: the untouched control
// plus labeled variants keyed "<segment>_v1", "<segment>_v2", ...
type VariantSet struct {
	Control  string            `json:"control"`
	Variants map[string]string `json:"variants"`
}

// GenerateVariants produces A/B subject variants for each requested segment.
// Labels are deterministic, and no two variants ever share the same text: a
// collision is disambiguated by appending the strategy name rather than
// emitting a duplicate.
func (p *Personalizer) GenerateVariants(baseSubject string, segments []domain.Segment) (*VariantSet, error) {
	if strings.TrimSpace(baseSubject) == "" {
		return nil, ErrEmptySubject
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}
	for _, seg := range segments {
		if _, ok := ruleTable[seg]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSegment, seg)
		}
	}

	// Deduplicate and order the segment list so output labels are stable
	// regardless of caller ordering.
	ordered := uniqueSorted(segments)

	set := &VariantSet{
		Control:  baseSubject,
		Variants: make(map[string]string),
	}
	seen := map[string]bool{baseSubject: true}

	for _, seg := range ordered {
		for i, strat := range ruleTable[seg] {
			text, err := p.render(strat.Template, baseSubject)
			if err != nil {
				return nil, err
			}
			if seen[text] {
				text = fmt.Sprintf("%s (%s)", text, strat.Name)
			}
			seen[text] = true
			set.Variants[fmt.Sprintf("%s_v%d", seg, i+1)] = text
		}
	}

	return set, nil
}

func (p *Personalizer) render(src, subject string) (string, error) {
	tpl, err := p.parse(src)
	if err != nil {
		return "", err
	}

	out, err := tpl.RenderString(map[string]interface{}{"subject": subject})
	if err != nil {
		return "", fmt.Errorf("render subject template: %w", err)
	}
	return out, nil
}

func (p *Personalizer) parse(src string) (*liquid.Template, error) {
	if cached, ok := p.cache.Load(src); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := p.engine.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	p.cache.Store(src, tpl)
	return tpl, nil
}

func uniqueSorted(segments []domain.Segment) []domain.Segment {
	seen := make(map[domain.Segment]bool, len(segments))
	var out []domain.Segment
	for _, seg := range segments {
		if !seen[seg] {
			seen[seg] = true
			out = append(out, seg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
