package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/personalizeai/engine/internal/domain"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Engagement   EngagementConfig   `yaml:"engagement"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Churn        ChurnConfig        `yaml:"churn"`
	Revenue      RevenueConfig      `yaml:"revenue"`
	Prediction   PredictionConfig   `yaml:"prediction"`
	Feeds        FeedConfig         `yaml:"feeds"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection.
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the Postgres subscriber/event store configuration.
type DatabaseConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// RedisConfig holds the Redis subscriber/event store configuration.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// EngagementConfig controls the engagement score calculation.
// Weights are percentages and should sum to 100.
type EngagementConfig struct {
	WindowDays  int     `yaml:"window_days"`
	OpenWeight  float64 `yaml:"open_weight"`
	ClickWeight float64 `yaml:"click_weight"`
	ViewWeight  float64 `yaml:"view_weight"`
}

// SegmentationConfig holds the classification thresholds. Rates are
// percentages (0-100).
type SegmentationConfig struct {
	HighEngagementOpenRate  float64 `yaml:"high_engagement_open_rate"`
	HighEngagementClickRate float64 `yaml:"high_engagement_click_rate"`
	LowEngagementOpenRate   float64 `yaml:"low_engagement_open_rate"`
}

// ChurnConfig holds the churn risk model weights. All contributions are
// probabilities in [0,1] before the final clamp.
type ChurnConfig struct {
	BaseWeight             float64 `yaml:"base_weight"`               // scales inverse open rate
	StalenessThresholdDays int     `yaml:"staleness_threshold_days"`  // days before recency penalty kicks in
	RecencyPenaltyPerDay   float64 `yaml:"recency_penalty_per_day"`   // added per day beyond threshold
	RecencyPenaltyCap      float64 `yaml:"recency_penalty_cap"`       // max total recency penalty
	LowEngagementPenalty   float64 `yaml:"low_engagement_penalty"`    // added for low_engagement segment
	HighEngagementBonus    float64 `yaml:"high_engagement_bonus"`     // subtracted for high_engagement segment
}

// RevenueConfig holds the revenue impact model constants.
//
// RevenueSensitivity is the single most consequential constant in the
// engine: it converts an engagement-percentage delta into a dollar lift.
// Improvement factors are fractions (0.10 = +10%).
type RevenueConfig struct {
	OpenRateImprovement  float64 `yaml:"open_rate_improvement"`
	ClickRateImprovement float64 `yaml:"click_rate_improvement"`
	RevenueSensitivity   float64 `yaml:"revenue_sensitivity"`
	OpenWeight           float64 `yaml:"open_weight"`  // weight of open improvement in engagement score
	ClickWeight          float64 `yaml:"click_weight"` // weight of click improvement in engagement score

	// DefaultAnnualRevenue is the assumed average annual revenue per
	// subscriber when the caller supplies none.
	DefaultAnnualRevenue float64 `yaml:"default_annual_revenue"`

	// TierCostBasis maps subscription tier to the annual cost basis used
	// for ROI. A zero cost basis yields an undefined ROI, never a division.
	TierCostBasis map[domain.SubscriptionTier]float64 `yaml:"tier_cost_basis"`

	// Baseline open/click rates (percentages) assumed for subscribers with
	// no event history, matching industry averages for financial newsletters.
	BaselineOpenRate  float64 `yaml:"baseline_open_rate"`
	BaselineClickRate float64 `yaml:"baseline_click_rate"`
}

// AffinityAll marks a segment as having affinity with every content type.
const AffinityAll = "all"

// PredictionConfig holds the content performance rule tables.
type PredictionConfig struct {
	// BaseEngagement is each segment's typical engagement baseline (0-100).
	BaseEngagement map[domain.Segment]float64 `yaml:"base_engagement"`

	// Affinity maps each segment to its known content-type affinity set.
	// The literal "all" matches every content type.
	Affinity map[domain.Segment][]string `yaml:"affinity"`

	// Keywords maps each segment to its keyword-interest table.
	Keywords map[domain.Segment][]string `yaml:"keywords"`

	ContentTypeMatchBonus float64 `yaml:"content_type_match_bonus"`
	KeywordPointsPerMatch float64 `yaml:"keyword_points_per_match"`
	KeywordRelevanceCap   float64 `yaml:"keyword_relevance_cap"`

	// KeywordRelevanceFloor is the relevance below which the predictor
	// recommends adding segment-relevant tags.
	KeywordRelevanceFloor float64 `yaml:"keyword_relevance_floor"`
}

// FeedConfig holds publisher RSS/Atom feed ingestion settings.
type FeedConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxItems       int    `yaml:"max_items"`
}

// Timeout returns the configured feed timeout as a duration.
func (c FeedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file, then applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for callers
// (tests, the seeder) that don't read a file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Engagement.WindowDays == 0 {
		c.Engagement.WindowDays = 30
	}
	if c.Engagement.OpenWeight == 0 && c.Engagement.ClickWeight == 0 && c.Engagement.ViewWeight == 0 {
		c.Engagement.OpenWeight = 30
		c.Engagement.ClickWeight = 40
		c.Engagement.ViewWeight = 30
	}

	if c.Segmentation.HighEngagementOpenRate == 0 {
		c.Segmentation.HighEngagementOpenRate = 40
	}
	if c.Segmentation.HighEngagementClickRate == 0 {
		c.Segmentation.HighEngagementClickRate = 5
	}
	if c.Segmentation.LowEngagementOpenRate == 0 {
		c.Segmentation.LowEngagementOpenRate = 15
	}

	if c.Churn.BaseWeight == 0 {
		c.Churn.BaseWeight = 0.5
	}
	if c.Churn.StalenessThresholdDays == 0 {
		c.Churn.StalenessThresholdDays = 14
	}
	if c.Churn.RecencyPenaltyPerDay == 0 {
		c.Churn.RecencyPenaltyPerDay = 0.02
	}
	if c.Churn.RecencyPenaltyCap == 0 {
		c.Churn.RecencyPenaltyCap = 0.40
	}
	if c.Churn.LowEngagementPenalty == 0 {
		c.Churn.LowEngagementPenalty = 0.15
	}
	if c.Churn.HighEngagementBonus == 0 {
		c.Churn.HighEngagementBonus = 0.10
	}

	if c.Revenue.OpenRateImprovement == 0 {
		c.Revenue.OpenRateImprovement = 0.10
	}
	if c.Revenue.ClickRateImprovement == 0 {
		c.Revenue.ClickRateImprovement = 0.15
	}
	if c.Revenue.RevenueSensitivity == 0 {
		c.Revenue.RevenueSensitivity = 0.5
	}
	if c.Revenue.OpenWeight == 0 && c.Revenue.ClickWeight == 0 {
		c.Revenue.OpenWeight = 0.5
		c.Revenue.ClickWeight = 0.5
	}
	if c.Revenue.DefaultAnnualRevenue == 0 {
		c.Revenue.DefaultAnnualRevenue = 1200
	}
	if c.Revenue.TierCostBasis == nil {
		c.Revenue.TierCostBasis = map[domain.SubscriptionTier]float64{
			domain.TierFree:     0,
			domain.TierStandard: 199,
			domain.TierPremium:  500,
		}
	}
	if c.Revenue.BaselineOpenRate == 0 {
		c.Revenue.BaselineOpenRate = 22.0
	}
	if c.Revenue.BaselineClickRate == 0 {
		c.Revenue.BaselineClickRate = 3.5
	}

	if c.Prediction.BaseEngagement == nil {
		c.Prediction.BaseEngagement = map[domain.Segment]float64{
			domain.SegmentHighEngagement: 85,
			domain.SegmentLowEngagement:  35,
			domain.SegmentStockFocused:   75,
			domain.SegmentMarketFocused:  68,
			domain.SegmentNewsFocused:    62,
		}
	}
	if c.Prediction.Affinity == nil {
		c.Prediction.Affinity = map[domain.Segment][]string{
			domain.SegmentHighEngagement: {AffinityAll},
			domain.SegmentLowEngagement:  {string(domain.ContentEducational)},
			domain.SegmentStockFocused:   {string(domain.ContentStockAnalysis), string(domain.ContentStockRecommendation)},
			domain.SegmentMarketFocused:  {string(domain.ContentMarketCommentary), string(domain.ContentEconomicAnalysis)},
			domain.SegmentNewsFocused:    {string(domain.ContentNews), string(domain.ContentBreakingNews)},
		}
	}
	if c.Prediction.Keywords == nil {
		c.Prediction.Keywords = map[domain.Segment][]string{
			domain.SegmentHighEngagement: {"exclusive", "premium", "insider"},
			domain.SegmentLowEngagement:  {"simple", "easy", "quick", "beginner"},
			domain.SegmentStockFocused:   {"stock", "price", "target", "buy", "sell", "earnings"},
			domain.SegmentMarketFocused:  {"market", "trend", "economy", "fed", "rates"},
			domain.SegmentNewsFocused:    {"breaking", "news", "alert", "update"},
		}
	}
	if c.Prediction.ContentTypeMatchBonus == 0 {
		c.Prediction.ContentTypeMatchBonus = 15
	}
	if c.Prediction.KeywordPointsPerMatch == 0 {
		c.Prediction.KeywordPointsPerMatch = 5
	}
	if c.Prediction.KeywordRelevanceCap == 0 {
		c.Prediction.KeywordRelevanceCap = 20
	}
	if c.Prediction.KeywordRelevanceFloor == 0 {
		c.Prediction.KeywordRelevanceFloor = 10
	}

	if c.Feeds.TimeoutSeconds == 0 {
		c.Feeds.TimeoutSeconds = 30
	}
	if c.Feeds.MaxItems == 0 {
		c.Feeds.MaxItems = 25
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		// No config file is fine, env overrides and defaults carry it.
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
		cfg.Database.Enabled = true
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if feedURL := os.Getenv("FEED_URL"); feedURL != "" {
		cfg.Feeds.URL = feedURL
	}

	return cfg, nil
}
