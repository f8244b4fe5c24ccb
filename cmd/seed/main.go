// Command seed loads a demo subscriber base with realistic engagement
// histories, so dashboards and projections have data to work with on a
// fresh install.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/personalizeai/engine/internal/config"
	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/repository/postgres"
	"github.com/personalizeai/engine/internal/repository/redisstore"
	"github.com/personalizeai/engine/internal/service/insights"
)

type persona struct {
	firstName string
	lastName  string
	tier      domain.SubscriptionTier
	prefs     []domain.ContentType
	sends     int
	openPct   float64
	clickPct  float64
}

var personas = []persona{
	{"Sarah", "Chen", domain.TierPremium, []domain.ContentType{domain.ContentStockAnalysis}, 40, 0.62, 0.12},
	{"Marcus", "Webb", domain.TierStandard, []domain.ContentType{domain.ContentMarketCommentary}, 40, 0.45, 0.06},
	{"Priya", "Patel", domain.TierPremium, []domain.ContentType{domain.ContentEconomicAnalysis}, 40, 0.55, 0.09},
	{"Tom", "Ricci", domain.TierFree, []domain.ContentType{domain.ContentNews}, 40, 0.28, 0.02},
	{"Elena", "Volkov", domain.TierStandard, []domain.ContentType{domain.ContentStockRecommendation}, 40, 0.38, 0.04},
	{"David", "Okafor", domain.TierFree, nil, 40, 0.08, 0.0},
	{"Mia", "Tanaka", domain.TierStandard, []domain.ContentType{domain.ContentEducational}, 40, 0.33, 0.03},
	{"Jack", "Morrison", domain.TierFree, nil, 40, 0.11, 0.01},
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo, cleanup, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	svc := insights.NewService(repo, cfg)
	rng := rand.New(rand.NewSource(42)) // reproducible demo data

	for _, p := range personas {
		sub := &domain.Subscriber{
			Email:              fmt.Sprintf("%s.%s@example.com", p.firstName, p.lastName),
			FirstName:          p.firstName,
			LastName:           p.lastName,
			Tier:               p.tier,
			ContentPreferences: p.prefs,
			SubscribedAt:       time.Now().AddDate(0, -6, 0),
		}
		if err := svc.CreateSubscriber(ctx, sub); err != nil {
			log.Fatalf("Seed subscriber %s: %v", sub.Email, err)
		}

		if err := seedEvents(ctx, repo, sub.ID, p, rng); err != nil {
			log.Fatalf("Seed events for %s: %v", sub.Email, err)
		}

		if _, err := svc.RefreshProfile(ctx, sub.ID); err != nil {
			log.Fatalf("Refresh profile for %s: %v", sub.Email, err)
		}
		log.Printf("Seeded %s (%s)", sub.Email, p.tier)
	}

	log.Printf("Done: %d subscribers seeded", len(personas))
}

// seedEvents spreads sends over the last 60 days and rolls opens/clicks per
// the persona's rates. Opens cluster in business hours so send-time
// optimization has a signal to find.
func seedEvents(ctx context.Context, repo insights.Repository, id string, p persona, rng *rand.Rand) error {
	contentType := domain.ContentMarketCommentary
	if len(p.prefs) > 0 {
		contentType = p.prefs[0]
	}

	for i := 0; i < p.sends; i++ {
		sent := time.Now().AddDate(0, 0, -rng.Intn(60))
		sent = time.Date(sent.Year(), sent.Month(), sent.Day(), 7+rng.Intn(3), 0, 0, 0, time.Local)

		if err := repo.RecordEvent(ctx, &domain.EngagementEvent{
			SubscriberID: id,
			Type:         domain.EventSent,
			Timestamp:    sent,
		}); err != nil {
			return err
		}

		if rng.Float64() >= p.openPct {
			continue
		}
		opened := sent.Add(time.Duration(1+rng.Intn(4)) * time.Hour)
		if err := repo.RecordEvent(ctx, &domain.EngagementEvent{
			SubscriberID: id,
			Type:         domain.EventOpened,
			Timestamp:    opened,
			ContentType:  contentType,
		}); err != nil {
			return err
		}

		if p.openPct > 0 && rng.Float64() < p.clickPct/p.openPct {
			if err := repo.RecordEvent(ctx, &domain.EngagementEvent{
				SubscriberID: id,
				Type:         domain.EventClicked,
				Timestamp:    opened.Add(time.Duration(1+rng.Intn(10)) * time.Minute),
				ContentType:  contentType,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func openStore(cfg *config.Config) (insights.Repository, func(), error) {
	if cfg.Database.Enabled && cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return postgres.NewSubscriberRepo(db), func() { db.Close() }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	return redisstore.NewStore(rdb), func() { rdb.Close() }, nil
}
