package service

import (
	"context"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/events"
	"survey-payout-be/pkg/quota"

	"github.com/google/uuid"
)

type ISurveyService interface {
	ListAvailable(ctx context.Context, userId uuid.UUID) ([]dto.AvailableSurveyResponse, error)
	ResumeSurvey(ctx context.Context, surveyId, adminId uuid.UUID) (*dto.ResumeSurveyResponse, error)
}

type surveyService struct {
	uowFactory unitofwork.RepositoryFactory
	quota      *quota.Controller
	publisher  eventbus.Publisher
	logger     logger.ILogger
}

func NewSurveyService(
	uowFactory unitofwork.RepositoryFactory,
	quota *quota.Controller,
	publisher eventbus.Publisher,
	logger logger.ILogger,
) ISurveyService {
	return &surveyService{
		uowFactory: uowFactory,
		quota:      quota,
		publisher:  publisher,
		logger:     logger,
	}
}

// ListAvailable lists active, unpaused surveys the user can still take.
func (s *surveyService) ListAvailable(ctx context.Context, userId uuid.UUID) ([]dto.AvailableSurveyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	surveys, err := uow.SurveyRepository().FindAll(ctx,
		specification.AvailableSurveys{},
		specification.NotCompletedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.AvailableSurveyResponse, 0, len(surveys))
	for _, survey := range surveys {
		res = append(res, dto.AvailableSurveyResponse{
			Id:                 survey.Id,
			Title:              survey.Title,
			IsPaid:             survey.IsPaid,
			Amount:             survey.Reward(),
			MinDurationMinutes: survey.MinDurationMinutes,
			MaxDurationMinutes: survey.MaxDurationMinutes,
		})
	}
	return res, nil
}

func (s *surveyService) ResumeSurvey(ctx context.Context, surveyId, adminId uuid.UUID) (*dto.ResumeSurveyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	survey, resumed, err := s.quota.Resume(ctx, uow, surveyId)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if resumed {
		s.logger.Info(logger.ModuleQuota, "Survey resumed by admin", map[string]interface{}{
			"surveyId": surveyId.String(),
			"adminId":  adminId.String(),
		})
		s.publisher.Publish(ctx, events.SurveyResumed{
			SurveyID:   surveyId,
			AdminID:    adminId,
			OccurredAt: time.Now().UTC(),
		})
	}

	return &dto.ResumeSurveyResponse{
		SurveyId: survey.Id,
		IsPaused: survey.IsPaused,
		Resumed:  resumed,
	}, nil
}
