package contract

import (
	"context"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SurveyResponseRepository interface {
	Create(ctx context.Context, response *entity.SurveyResponse) error
	// CreateIfAbsent inserts response unless the (user, survey) pair already
	// has a row. It reports whether the insert happened.
	CreateIfAbsent(ctx context.Context, response *entity.SurveyResponse) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SurveyResponse, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveyResponse, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Update(ctx context.Context, response *entity.SurveyResponse) error
	// MarkAbandoned moves the given rows out of waiting_to_complete, skipping
	// any row that is no longer waiting or whose wait began at or after cutoff.
	MarkAbandoned(ctx context.Context, ids []uuid.UUID, cutoff, now time.Time) (int64, error)
	Stats(ctx context.Context, surveyId uuid.UUID) (*entity.SurveyStats, error)
}
