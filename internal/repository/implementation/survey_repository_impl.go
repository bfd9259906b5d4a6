package implementation

import (
	"context"
	"errors"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"

	"gorm.io/gorm"
)

type surveyRepositoryImpl struct {
	db *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) contract.SurveyRepository {
	return &surveyRepositoryImpl{db: db}
}

func (r *surveyRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Survey, error) {
	var m model.Survey
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapToEntity(&m), nil
}

func (r *surveyRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Survey, error) {
	var models []*model.Survey
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	surveys := make([]*entity.Survey, 0, len(models))
	for _, m := range models {
		surveys = append(surveys, r.mapToEntity(m))
	}
	return surveys, nil
}

// UpdateQuotaState writes only the pause columns; the rest of the survey
// belongs to the catalog.
func (r *surveyRepositoryImpl) UpdateQuotaState(ctx context.Context, survey *entity.Survey) error {
	return r.db.WithContext(ctx).Model(&model.Survey{}).
		Where("id = ?", survey.Id).
		Updates(map[string]interface{}{
			"is_paused":     survey.IsPaused,
			"paused_reason": survey.PausedReason,
			"paused_at":     survey.PausedAt,
		}).Error
}

func (r *surveyRepositoryImpl) mapToEntity(m *model.Survey) *entity.Survey {
	return &entity.Survey{
		Id:                       m.Id,
		Title:                    m.Title,
		IsActive:                 m.IsActive,
		IsPaid:                   m.IsPaid,
		Amount:                   m.Amount,
		AutoApprove:              m.AutoApprove,
		AllowMultipleSubmissions: m.AllowMultipleSubmissions,
		MinDurationMinutes:       m.MinDurationMinutes,
		MaxDurationMinutes:       m.MaxDurationMinutes,
		NotifyOnQuotaFull:        m.NotifyOnQuotaFull,
		ManagerId:                m.ManagerId,
		CallbackSecret:           m.CallbackSecret,
		IsPaused:                 m.IsPaused,
		PausedReason:             m.PausedReason,
		PausedAt:                 m.PausedAt,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}
