package contract

import (
	"context"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, request *entity.WithdrawalRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WithdrawalRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WithdrawalRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStatus writes the status and terminal metadata. Amounts are never
	// updated.
	UpdateStatus(ctx context.Context, request *entity.WithdrawalRequest) error
}
