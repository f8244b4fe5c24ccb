package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalizeai/engine/internal/domain"
	"github.com/personalizeai/engine/internal/repository/postgres"
	"github.com/personalizeai/engine/internal/service/insights"
)

var subscriberCols = []string{
	"id", "email", "first_name", "last_name",
	"subscription_tier", "content_preferences", "frequency_preference",
	"segment", "churn_risk", "engagement_score",
	"subscribed_at", "updated_at",
}

func TestGetSubscriber(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT(.|\n)+FROM subscribers`).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows(subscriberCols).AddRow(
			"sub-1", "sarah@example.com", "Sarah", "Chen",
			"premium", pq.StringArray{"stock_analysis"}, "daily",
			"stock_focused", 0.25, 62.5,
			now, now,
		))

	repo := postgres.NewSubscriberRepo(db)
	sub, err := repo.GetSubscriber(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sarah@example.com", sub.Email)
	assert.Equal(t, domain.TierPremium, sub.Tier)
	assert.Equal(t, []domain.ContentType{domain.ContentStockAnalysis}, sub.ContentPreferences)
	assert.Equal(t, domain.SegmentStockFocused, sub.Segment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscriberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT(.|\n)+FROM subscribers`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(subscriberCols))

	repo := postgres.NewSubscriberRepo(db)
	_, err = repo.GetSubscriber(context.Background(), "ghost")
	assert.ErrorIs(t, err, insights.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE subscribers`).
		WithArgs("high_engagement", 0.1, 88.0, "sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSubscriberRepo(db)
	err = repo.UpdateProfile(context.Background(), "sub-1", domain.Profile{
		Segment:         domain.SegmentHighEngagement,
		ChurnRisk:       0.1,
		EngagementScore: 88.0,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE subscribers`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSubscriberRepo(db)
	err = repo.UpdateProfile(context.Background(), "ghost", domain.Profile{})
	assert.ErrorIs(t, err, insights.ErrNotFound)
}

func TestRecordEventAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO engagement_events`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSubscriberRepo(db)
	ev := &domain.EngagementEvent{SubscriberID: "sub-1", Type: domain.EventOpened}
	require.NoError(t, repo.RecordEvent(context.Background(), ev))
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventsForSubscriber(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT(.|\n)+FROM engagement_events`).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "event_type", "event_timestamp", "content_type"}).
			AddRow("ev-1", "sub-1", "sent", now.Add(-time.Hour), "").
			AddRow("ev-2", "sub-1", "opened", now, "market_commentary"))

	repo := postgres.NewSubscriberRepo(db)
	events, err := repo.EventsForSubscriber(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventOpened, events[1].Type)
	assert.Equal(t, domain.ContentMarketCommentary, events[1].ContentType)
}
