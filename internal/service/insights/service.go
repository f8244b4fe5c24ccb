package insights

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/engagement"
	"github.com/personalizeai/engine/internal/financial"
	"github.com/personalizeai/engine/internal/personalization"
	"github.com/personalizeai/engine/internal/prediction"
	"github.com/personalizeai/engine/internal/segmentation"
)

// aggregateWorkers bounds the fan-out for aggregate revenue runs.
const aggregateWorkers = 8

// Service implements the personalization and impact analytics operations.
type Service struct {
	repo Repository
	cfg  *config.Config

	classifier   *segmentation.Classifier
	churn        *segmentation.ChurnEstimator
	personalizer *personalization.Personalizer
	predictor    *prediction.Predictor
	calculator   *financial.Calculator
}

// NewService creates an insights service backed by the given repository.
func NewService(repo Repository, cfg *config.Config) *Service {
	return &Service{
		repo:         repo,
		cfg:          cfg,
		classifier:   segmentation.NewClassifier(cfg.Segmentation),
		churn:        segmentation.NewChurnEstimator(cfg.Churn),
		personalizer: personalization.NewPersonalizer(),
		predictor:    prediction.NewPredictor(cfg.Prediction),
		calculator:   financial.NewCalculator(cfg.Revenue),
	}
}

// AggregateEngagement reduces a subscriber's event history into rate metrics.
func (s *Service) AggregateEngagement(ctx context.Context, subscriberID string) (engagement.Metrics, error) {
	events, err := s.eventsFor(ctx, subscriberID)
	if err != nil {
		return engagement.Metrics{}, err
	}
	return engagement.Aggregate(events), nil
}

// ClassifySegment recomputes and stores the subscriber's full profile, then
// returns the assigned segment. Re-running with identical inputs yields the
// identical segment.
func (s *Service) ClassifySegment(ctx context.Context, subscriberID string) (domain.Segment, error) {
	sub, err := s.RefreshProfile(ctx, subscriberID)
	if err != nil {
		return "", err
	}
	return sub.Segment, nil
}

// EstimateChurn recomputes and stores the subscriber's full profile, then
// returns the churn probability in [0,1].
func (s *Service) EstimateChurn(ctx context.Context, subscriberID string) (float64, error) {
	sub, err := s.RefreshProfile(ctx, subscriberID)
	if err != nil {
		return 0, err
	}
	return sub.ChurnRisk, nil
}

// RefreshProfile recomputes segment, churn risk, and engagement score from
// the current event history and writes them back as one explicit update. The
// returned snapshot reflects the new profile.
func (s *Service) RefreshProfile(ctx context.Context, subscriberID string) (*domain.Subscriber, error) {
	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.EventsForSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	now := time.Now()
	metrics := engagement.Aggregate(events)
	observed := engagement.Preferences(events)

	profile := domain.Profile{
		Segment:         s.classifier.Classify(metrics, sub.ContentPreferences, observed),
		EngagementScore: engagement.Score(events, now, s.cfg.Engagement),
	}
	profile.ChurnRisk = s.churn.Estimate(metrics, profile.Segment, now)

	if err := s.repo.UpdateProfile(ctx, subscriberID, profile); err != nil {
		return nil, fmt.Errorf("write back profile: %w", err)
	}

	updated := sub.WithProfile(profile)
	return &updated, nil
}

// PersonalizeSubject builds a segment-tailored subject line for one
// subscriber. Subscribers without an assigned segment get their profile
// refreshed first.
func (s *Service) PersonalizeSubject(ctx context.Context, subscriberID, baseSubject string) (string, error) {
	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return "", err
	}
	if sub.Segment == "" {
		if sub, err = s.RefreshProfile(ctx, subscriberID); err != nil {
			return "", err
		}
	}

	return s.personalizer.Personalize(baseSubject, sub.Segment, personalization.Options{
		ChurnRisk: sub.ChurnRisk,
	})
}

// PersonalizeContentOrder reorders candidate content items by the
// subscriber's observed content preferences. Subscribers with no engagement
// signal get the items back in their original order.
func (s *Service) PersonalizeContentOrder(ctx context.Context, subscriberID string, items []domain.ContentItem) ([]domain.ContentItem, error) {
	events, err := s.eventsFor(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return personalization.OrderContent(items, engagement.Preferences(events)), nil
}

// GenerateSubjectVariants produces A/B subject variants for the given
// segments. Pure computation, no store access.
func (s *Service) GenerateSubjectVariants(baseSubject string, segments []domain.Segment) (*personalization.VariantSet, error) {
	return s.personalizer.GenerateVariants(baseSubject, segments)
}

// PredictContentPerformance scores a content item for the given segments.
// Pure computation, no store access.
func (s *Service) PredictContentPerformance(item domain.ContentItem, segments []domain.Segment) (map[domain.Segment]prediction.Prediction, error) {
	return s.predictor.Predict(item, segments)
}

// OptimizeSendTime recommends a send time from the subscriber's open
// history.
func (s *Service) OptimizeSendTime(ctx context.Context, subscriberID string) (personalization.SendTimeRecommendation, error) {
	events, err := s.eventsFor(ctx, subscriberID)
	if err != nil {
		return personalization.SendTimeRecommendation{}, err
	}
	return personalization.OptimizeSendTime(events), nil
}

// ComputeRevenueImpact projects the personalization revenue impact for one
// subscriber. The result is a pure function of the current subscriber state
// and configuration; nothing is cached.
func (s *Service) ComputeRevenueImpact(ctx context.Context, subscriberID string) (*financial.SubscriberImpact, error) {
	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.EventsForSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	impact := s.calculator.Compute(subscriberID, s.baselineFor(sub, engagement.Aggregate(events)))
	return &impact, nil
}

// ComputeAggregateRevenueImpact projects revenue impact across the supplied
// subscribers (all subscribers when ids is empty) and combines the results.
// Per-subscriber calculations run in parallel; one malformed subscriber
// never aborts the batch — its failure is recorded in the result's error
// list and excluded from the sums.
func (s *Service) ComputeAggregateRevenueImpact(ctx context.Context, ids []string) (*financial.AggregateImpact, error) {
	if len(ids) == 0 {
		subs, err := s.repo.ListSubscribers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subscribers: %w", err)
		}
		for _, sub := range subs {
			ids = append(ids, sub.ID)
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		impacts []financial.SubscriberImpact
		errs    []financial.ItemError
	)

	sem := make(chan struct{}, aggregateWorkers)
	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			impact, err := s.ComputeRevenueImpact(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, financial.ItemError{SubscriberID: id, Error: err.Error()})
				return
			}
			impacts = append(impacts, *impact)
		}(id)
	}
	wg.Wait()

	return s.calculator.Aggregate(impacts, errs), nil
}

// baselineFor derives a subscriber's baseline metrics. Subscribers with no
// send history fall back to the configured industry baselines so projections
// stay meaningful for fresh imports.
func (s *Service) baselineFor(sub *domain.Subscriber, m engagement.Metrics) financial.Baseline {
	b := financial.Baseline{
		OpenRate:      m.OpenRate,
		ClickRate:     m.ClickRate,
		AnnualRevenue: s.cfg.Revenue.DefaultAnnualRevenue,
		CostBasis:     s.cfg.Revenue.TierCostBasis[sub.Tier],
	}
	if m.InsufficientData {
		b.OpenRate = s.cfg.Revenue.BaselineOpenRate
		b.ClickRate = s.cfg.Revenue.BaselineClickRate
	}
	return b
}

func (s *Service) eventsFor(ctx context.Context, subscriberID string) ([]domain.EngagementEvent, error) {
	if _, err := s.repo.GetSubscriber(ctx, subscriberID); err != nil {
		return nil, err
	}
	events, err := s.repo.EventsForSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	return events, nil
}
