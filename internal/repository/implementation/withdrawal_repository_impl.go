package implementation

import (
	"context"
	"errors"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type withdrawalRepositoryImpl struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) contract.WithdrawalRepository {
	return &withdrawalRepositoryImpl{db: db}
}

func (r *withdrawalRepositoryImpl) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	m := &model.WithdrawalRequest{
		Id:                   request.Id,
		Code:                 request.Code,
		UserId:               request.UserId,
		PaymentMethodId:      request.PaymentMethodId,
		Amount:               request.Amount,
		ProcessingFee:        request.ProcessingFee,
		NetAmount:            request.NetAmount,
		PaymentDetails:       datatypes.NewJSONType(request.PaymentDetails),
		Status:               string(request.Status),
		ProcessedBy:          request.ProcessedBy,
		ProcessedAt:          request.ProcessedAt,
		TransactionReference: request.TransactionReference,
		AdminNotes:           request.AdminNotes,
	}
	if err := r.db.WithContext(ctx).Omit("PaymentMethod").Create(m).Error; err != nil {
		return err
	}
	request.CreatedAt = m.CreatedAt
	request.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *withdrawalRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WithdrawalRequest, error) {
	var m model.WithdrawalRequest
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

// FindAll returns requests with the payment method preloaded.
func (r *withdrawalRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WithdrawalRequest, error) {
	var models []*model.WithdrawalRequest
	query := r.db.WithContext(ctx).Preload("PaymentMethod")

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	requests := make([]*entity.WithdrawalRequest, 0, len(models))
	for _, m := range models {
		request := r.mapToEntity(m)
		request.PaymentMethodName = m.PaymentMethod.Name
		requests = append(requests, request)
	}
	return requests, nil
}

func (r *withdrawalRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.WithdrawalRequest{})

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	err := query.Count(&count).Error
	return count, err
}

func (r *withdrawalRepositoryImpl) UpdateStatus(ctx context.Context, request *entity.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Model(&model.WithdrawalRequest{}).
		Where("id = ?", request.Id).
		Updates(map[string]interface{}{
			"status":                string(request.Status),
			"processed_by":          request.ProcessedBy,
			"processed_at":          request.ProcessedAt,
			"transaction_reference": request.TransactionReference,
			"admin_notes":           request.AdminNotes,
		}).Error
}

func (r *withdrawalRepositoryImpl) mapToEntity(m *model.WithdrawalRequest) *entity.WithdrawalRequest {
	return &entity.WithdrawalRequest{
		Id:                   m.Id,
		Code:                 m.Code,
		UserId:               m.UserId,
		PaymentMethodId:      m.PaymentMethodId,
		Amount:               m.Amount,
		ProcessingFee:        m.ProcessingFee,
		NetAmount:            m.NetAmount,
		PaymentDetails:       m.PaymentDetails.Data(),
		Status:               entity.WithdrawalStatus(m.Status),
		ProcessedBy:          m.ProcessedBy,
		ProcessedAt:          m.ProcessedAt,
		TransactionReference: m.TransactionReference,
		AdminNotes:           m.AdminNotes,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
