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

type paymentMethodRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) contract.PaymentMethodRepository {
	return &paymentMethodRepositoryImpl{db: db}
}

func (r *paymentMethodRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error) {
	var m model.PaymentMethod
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

	return mapPaymentMethod(&m), nil
}

func (r *paymentMethodRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error) {
	var models []*model.PaymentMethod
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	methods := make([]*entity.PaymentMethod, 0, len(models))
	for _, m := range models {
		methods = append(methods, mapPaymentMethod(m))
	}
	return methods, nil
}

func mapPaymentMethod(m *model.PaymentMethod) *entity.PaymentMethod {
	return &entity.PaymentMethod{
		Id:             m.Id,
		Name:           m.Name,
		MinWithdrawal:  m.MinWithdrawal,
		MaxWithdrawal:  m.MaxWithdrawal,
		FeeType:        entity.FeeType(m.FeeType),
		FeeValue:       m.FeeValue,
		RequiredFields: []string(m.RequiredFields),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
