package quota_test

import (
	"context"
	"testing"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/quota"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPauseOpensOneWindow(t *testing.T) {
	db := testutil.NewDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	c := quota.NewController(logger.NewNopLogger())
	ctx := context.Background()
	managerID := uuid.New()
	survey := testutil.SeedSurvey(t, db, func(s *model.Survey) {
		s.NotifyOnQuotaFull = true
		s.ManagerId = &managerID
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	pause := func() bool {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		_, opened, err := c.Pause(ctx, uow, survey.Id, now)
		require.NoError(t, err)
		require.NoError(t, uow.Commit())
		return opened
	}

	assert.True(t, pause())
	assert.False(t, pause())

	stored, err := factory.NewUnitOfWork(ctx).SurveyRepository().FindOne(ctx, specification.ByID{ID: survey.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsPaused)
	assert.Equal(t, entity.PausedReasonQuotaFull, stored.PausedReason)

	ev, err := c.Announce(ctx, factory.NewUnitOfWork(ctx), stored)
	require.NoError(t, err)
	assert.Equal(t, &managerID, ev.ManagerID)
	assert.True(t, ev.OccurredAt.Equal(now))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	_, resumed, err := c.Resume(ctx, uow, survey.Id)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	assert.True(t, resumed)

	assert.True(t, pause())
}

func TestPauseRespectsNotifyFlag(t *testing.T) {
	db := testutil.NewDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	c := quota.NewController(logger.NewNopLogger())
	ctx := context.Background()
	survey := testutil.SeedSurvey(t, db)

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	got, opened, err := c.Pause(ctx, uow, survey.Id, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, opened)
	assert.False(t, got.IsPaused)

	_, _, err = c.Pause(ctx, uow, uuid.New(), time.Now().UTC())
	assert.ErrorIs(t, err, entity.ErrSurveyNotFound)
}
