package contract

import (
	"context"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"

	"github.com/google/uuid"
)

type BalanceRepository interface {
	// EnsureExists inserts a zero balance row for the user if none exists.
	EnsureExists(ctx context.Context, userId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserBalance, error)
	Update(ctx context.Context, balance *entity.UserBalance) error

	// CreateTransaction journals a mutation. It reports false when the
	// reference was already journaled.
	CreateTransaction(ctx context.Context, tx *entity.BalanceTransaction) (bool, error)
	FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.BalanceTransaction, error)
}
