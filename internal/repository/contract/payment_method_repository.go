package contract

import (
	"context"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"
)

type PaymentMethodRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentMethod, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentMethod, error)
}
