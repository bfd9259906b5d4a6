package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type surveyResponseRepositoryImpl struct {
	db *gorm.DB
}

func NewSurveyResponseRepository(db *gorm.DB) contract.SurveyResponseRepository {
	return &surveyResponseRepositoryImpl{db: db}
}

func (r *surveyResponseRepositoryImpl) Create(ctx context.Context, response *entity.SurveyResponse) error {
	m, err := r.mapToModel(response)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	response.CreatedAt = m.CreatedAt
	response.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *surveyResponseRepositoryImpl) CreateIfAbsent(ctx context.Context, response *entity.SurveyResponse) (bool, error) {
	m, err := r.mapToModel(response)
	if err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "survey_id"}},
			DoNothing: true,
		}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	response.CreatedAt = m.CreatedAt
	response.UpdatedAt = m.UpdatedAt
	return true, nil
}

func (r *surveyResponseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SurveyResponse, error) {
	var m model.SurveyResponse
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

func (r *surveyResponseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SurveyResponse, error) {
	var models []*model.SurveyResponse
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	responses := make([]*entity.SurveyResponse, 0, len(models))
	for _, m := range models {
		responses = append(responses, r.mapToEntity(m))
	}
	return responses, nil
}

func (r *surveyResponseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.SurveyResponse{})

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	err := query.Count(&count).Error
	return count, err
}

func (r *surveyResponseRepositoryImpl) Update(ctx context.Context, response *entity.SurveyResponse) error {
	payload, err := marshalPayload(response.Payload)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.SurveyResponse{}).
		Where("id = ?", response.Id).
		Updates(map[string]interface{}{
			"status":             string(response.Status),
			"completion_outcome": outcomeColumn(response.CompletionOutcome),
			"approval_status":    approvalColumn(response.ApprovalStatus),
			"start_time":         response.StartTime,
			"waiting_since":      response.WaitingSince,
			"completion_time":    response.CompletionTime,
			"approval_date":      response.ApprovalDate,
			"approved_by":        response.ApprovedBy,
			"admin_notes":        response.AdminNotes,
			"country":            response.Country,
			"ip_address":         response.IpAddress,
			"user_agent":         response.UserAgent,
			"referrer":           response.Referrer,
			"payload":            payload,
			"round":              response.Round,
		}).Error
}

func (r *surveyResponseRepositoryImpl) MarkAbandoned(ctx context.Context, ids []uuid.UUID, cutoff, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).Model(&model.SurveyResponse{})
	query = specification.ByIDs{IDs: ids}.Apply(query)
	query = specification.WaitingSinceBefore{Cutoff: cutoff}.Apply(query)

	result := query.Updates(map[string]interface{}{
		"status":             string(entity.ResponseStatusNotComplete),
		"completion_outcome": string(entity.OutcomeAbandoned),
		"waiting_since":      nil,
		"updated_at":         now,
	})
	return result.RowsAffected, result.Error
}

func (r *surveyResponseRepositoryImpl) Stats(ctx context.Context, surveyId uuid.UUID) (*entity.SurveyStats, error) {
	var row struct {
		Participants      int64
		SuccessCount      int64
		QuotaCount        int64
		DisqualifiedCount int64
	}
	err := r.db.WithContext(ctx).Model(&model.SurveyResponse{}).
		Select(`COUNT(*) AS participants,
			COALESCE(SUM(CASE WHEN completion_outcome = ? THEN 1 ELSE 0 END), 0) AS success_count,
			COALESCE(SUM(CASE WHEN completion_outcome = ? THEN 1 ELSE 0 END), 0) AS quota_count,
			COALESCE(SUM(CASE WHEN completion_outcome = ? THEN 1 ELSE 0 END), 0) AS disqualified_count`,
			string(entity.OutcomeSuccess), string(entity.OutcomeQuotaComplete), string(entity.OutcomeDisqualified)).
		Where("survey_id = ?", surveyId).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entity.SurveyStats{
		SurveyId:          surveyId,
		Participants:      row.Participants,
		SuccessCount:      row.SuccessCount,
		QuotaCount:        row.QuotaCount,
		DisqualifiedCount: row.DisqualifiedCount,
	}, nil
}

func (r *surveyResponseRepositoryImpl) mapToModel(e *entity.SurveyResponse) (*model.SurveyResponse, error) {
	payload, err := marshalPayload(e.Payload)
	if err != nil {
		return nil, err
	}
	return &model.SurveyResponse{
		Id:                e.Id,
		UserId:            e.UserId,
		SurveyId:          e.SurveyId,
		Status:            string(e.Status),
		CompletionOutcome: outcomeColumn(e.CompletionOutcome),
		ApprovalStatus:    approvalColumn(e.ApprovalStatus),
		StartTime:         e.StartTime,
		WaitingSince:      e.WaitingSince,
		CompletionTime:    e.CompletionTime,
		ApprovalDate:      e.ApprovalDate,
		ApprovedBy:        e.ApprovedBy,
		AdminNotes:        e.AdminNotes,
		Country:           e.Country,
		IpAddress:         e.IpAddress,
		UserAgent:         e.UserAgent,
		Referrer:          e.Referrer,
		Payload:           payload,
		Round:             e.Round,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}, nil
}

func (r *surveyResponseRepositoryImpl) mapToEntity(m *model.SurveyResponse) *entity.SurveyResponse {
	e := &entity.SurveyResponse{
		Id:             m.Id,
		UserId:         m.UserId,
		SurveyId:       m.SurveyId,
		Status:         entity.ResponseStatus(m.Status),
		StartTime:      m.StartTime,
		WaitingSince:   m.WaitingSince,
		CompletionTime: m.CompletionTime,
		ApprovalDate:   m.ApprovalDate,
		ApprovedBy:     m.ApprovedBy,
		AdminNotes:     m.AdminNotes,
		Country:        m.Country,
		IpAddress:      m.IpAddress,
		UserAgent:      m.UserAgent,
		Referrer:       m.Referrer,
		Round:          m.Round,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.CompletionOutcome != nil {
		outcome := entity.CompletionOutcome(*m.CompletionOutcome)
		e.CompletionOutcome = &outcome
	}
	if m.ApprovalStatus != nil {
		status := entity.ApprovalStatus(*m.ApprovalStatus)
		e.ApprovalStatus = &status
	}
	if len(m.Payload) > 0 {
		var payload map[string]interface{}
		if err := json.Unmarshal(m.Payload, &payload); err == nil {
			e.Payload = payload
		}
	}
	return e
}

func marshalPayload(payload map[string]interface{}) (datatypes.JSON, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func outcomeColumn(o *entity.CompletionOutcome) *string {
	if o == nil {
		return nil
	}
	v := string(*o)
	return &v
}

func approvalColumn(a *entity.ApprovalStatus) *string {
	if a == nil {
		return nil
	}
	v := string(*a)
	return &v
}
