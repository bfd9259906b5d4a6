package service

import (
	"context"
	"testing"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedWaiting(t *testing.T, db *gorm.DB, surveyID uuid.UUID, since time.Time) uuid.UUID {
	t.Helper()
	r := &model.SurveyResponse{
		Id:           uuid.New(),
		UserId:       uuid.New(),
		SurveyId:     surveyID,
		Status:       string(entity.ResponseStatusWaiting),
		StartTime:    since,
		WaitingSince: &since,
		Round:        1,
	}
	require.NoError(t, db.Create(r).Error)
	return r.Id
}

func TestReaperRun_Boundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	survey := testutil.SeedSurvey(t, env.db)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	fresh := seedWaiting(t, env.db, survey.Id, now.Add(-47*time.Hour))
	stale := seedWaiting(t, env.db, survey.Id, now.Add(-49*time.Hour))

	svc := NewReaperService(env.factory, env.publisher, env.metrics, logger.NewNopLogger(), 48*time.Hour).(*reaperService)
	svc.now = fixedClock(now)

	res, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Reaped)
	assert.Equal(t, now.Add(-48*time.Hour), res.Cutoff)

	kept := loadResponse(t, env.db, fresh)
	assert.Equal(t, string(entity.ResponseStatusWaiting), kept.Status)
	assert.NotNil(t, kept.WaitingSince)

	reaped := loadResponse(t, env.db, stale)
	assert.Equal(t, string(entity.ResponseStatusNotComplete), reaped.Status)
	require.NotNil(t, reaped.CompletionOutcome)
	assert.Equal(t, string(entity.OutcomeAbandoned), *reaped.CompletionOutcome)
	assert.Nil(t, reaped.WaitingSince)

	published := env.publisher.OfType(events.TypeResponsesReaped)
	require.Len(t, published, 1)
	assert.Equal(t, []uuid.UUID{stale}, published[0].(events.ResponsesReaped).ResponseIDs)

	// A second run has nothing left to do.
	again, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Reaped)
	assert.Len(t, env.publisher.OfType(events.TypeResponsesReaped), 1)
	assert.Equal(t, uint64(2), histogramCount(t, env))
}

func TestReaperRun_LeavesCompletedRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	survey := testutil.SeedSurvey(t, env.db)
	userID := uuid.New()

	old := time.Now().UTC().Add(-72 * time.Hour)
	env.responses.now = fixedClock(old)
	_, err := env.responses.StartResponse(ctx, userID, survey.Id, entity.Provenance{})
	require.NoError(t, err)
	done, err := env.responses.CompleteResponse(ctx, userID, survey.Id, entity.OutcomeDisqualified, nil)
	require.NoError(t, err)

	svc := NewReaperService(env.factory, env.publisher, env.metrics, logger.NewNopLogger(), 0)
	res, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Reaped)
	assert.Equal(t, "48h0m0s", res.Threshold)
	assert.Equal(t, string(entity.ResponseStatusCompleted), loadResponse(t, env.db, done.ResponseId).Status)
}

func histogramCount(t *testing.T, env *testEnv) uint64 {
	t.Helper()
	mfs, err := env.registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == "reaper_run_duration_seconds" {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	return 0
}
