package contract

import (
	"context"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"
)

type SurveyRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Survey, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Survey, error)
	UpdateQuotaState(ctx context.Context, survey *entity.Survey) error
}
