package domain

// ContentType enumerates the kinds of editorial content a financial
// publisher ships in a newsletter.
type ContentType string

const (
	ContentMarketCommentary    ContentType = "market_commentary"
	ContentStockAnalysis       ContentType = "stock_analysis"
	ContentStockRecommendation ContentType = "stock_recommendation"
	ContentEconomicAnalysis    ContentType = "economic_analysis"
	ContentNews                ContentType = "news"
	ContentBreakingNews        ContentType = "breaking_news"
	ContentEducational         ContentType = "educational"
)

// AllContentTypes lists every valid content type.
var AllContentTypes = []ContentType{
	ContentMarketCommentary,
	ContentStockAnalysis,
	ContentStockRecommendation,
	ContentEconomicAnalysis,
	ContentNews,
	ContentBreakingNews,
	ContentEducational,
}

// Valid reports whether c is one of the enumerated content types.
func (c ContentType) Valid() bool {
	for _, known := range AllContentTypes {
		if c == known {
			return true
		}
	}
	return false
}

// ContentItem is a candidate piece of content scored by the performance
// predictor. Items are constructed per request and never persisted.
type ContentItem struct {
	Title       string      `json:"title"`
	ContentType ContentType `json:"content_type"`
	Tags        []string    `json:"tags"`
}
