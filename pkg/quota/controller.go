// Package quota pauses surveys that report quota full.
package quota

import (
	"context"
	"fmt"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/events"

	"github.com/google/uuid"
)

type Controller struct {
	logger logger.ILogger
}

func NewController(logger logger.ILogger) *Controller {
	return &Controller{logger: logger}
}

// Pause locks the survey row and pauses it if quota notifications are
// enabled. It reports true only when this call opened a new pause window;
// a survey that is already paused is left untouched. Must run inside the
// caller's transaction.
func (c *Controller) Pause(ctx context.Context, uow unitofwork.UnitOfWork, surveyId uuid.UUID, now time.Time) (*entity.Survey, bool, error) {
	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId}, specification.ForUpdate{})
	if err != nil {
		return nil, false, fmt.Errorf("lock survey: %w", err)
	}
	if survey == nil {
		return nil, false, entity.ErrSurveyNotFound
	}

	if !survey.NotifyOnQuotaFull {
		return survey, false, nil
	}
	if survey.IsPaused {
		c.logger.Debug(logger.ModuleQuota, "Survey already paused", map[string]interface{}{
			"surveyId": surveyId.String(),
			"reason":   survey.PausedReason,
		})
		return survey, false, nil
	}

	survey.IsPaused = true
	survey.PausedReason = entity.PausedReasonQuotaFull
	survey.PausedAt = &now
	if err := uow.SurveyRepository().UpdateQuotaState(ctx, survey); err != nil {
		return nil, false, fmt.Errorf("pause survey: %w", err)
	}

	c.logger.Info(logger.ModuleQuota, "Survey auto-paused", map[string]interface{}{
		"surveyId": surveyId.String(),
		"pausedAt": now,
	})
	return survey, true, nil
}

// Announce builds the single SurveyAutoPaused event of a pause window from
// the survey's current statistics. Call it after the pause has committed.
func (c *Controller) Announce(ctx context.Context, uow unitofwork.UnitOfWork, survey *entity.Survey) (*events.SurveyAutoPaused, error) {
	stats, err := uow.SurveyResponseRepository().Stats(ctx, survey.Id)
	if err != nil {
		return nil, fmt.Errorf("survey stats: %w", err)
	}

	if survey.ManagerId == nil {
		c.logger.Warn(logger.ModuleQuota, "Survey has no manager, quota notification skipped", map[string]interface{}{
			"surveyId": survey.Id.String(),
		})
	}

	occurredAt := time.Now().UTC()
	if survey.PausedAt != nil {
		occurredAt = *survey.PausedAt
	}

	return &events.SurveyAutoPaused{
		SurveyID:          survey.Id,
		SurveyName:        survey.Title,
		ManagerID:         survey.ManagerId,
		Participants:      stats.Participants,
		SuccessCount:      stats.SuccessCount,
		QuotaCount:        stats.QuotaCount,
		DisqualifiedCount: stats.DisqualifiedCount,
		OccurredAt:        occurredAt,
	}, nil
}

// Resume clears the pause so the next quota-full report opens a new window.
// Must run inside the caller's transaction.
func (c *Controller) Resume(ctx context.Context, uow unitofwork.UnitOfWork, surveyId uuid.UUID) (*entity.Survey, bool, error) {
	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId}, specification.ForUpdate{})
	if err != nil {
		return nil, false, fmt.Errorf("lock survey: %w", err)
	}
	if survey == nil {
		return nil, false, entity.ErrSurveyNotFound
	}
	if !survey.IsPaused {
		return survey, false, nil
	}

	survey.IsPaused = false
	survey.PausedReason = ""
	survey.PausedAt = nil
	if err := uow.SurveyRepository().UpdateQuotaState(ctx, survey); err != nil {
		return nil, false, fmt.Errorf("resume survey: %w", err)
	}

	c.logger.Info(logger.ModuleQuota, "Survey resumed", map[string]interface{}{"surveyId": surveyId.String()})
	return survey, true, nil
}
