package unitofwork

import (
	"context"

	"survey-payout-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SurveyRepository() contract.SurveyRepository
	SurveyResponseRepository() contract.SurveyResponseRepository
	BalanceRepository() contract.BalanceRepository
	PaymentMethodRepository() contract.PaymentMethodRepository
	WithdrawalRepository() contract.WithdrawalRepository
	UserProfileRepository() contract.UserProfileRepository
	NotificationRepository() contract.NotificationRepository
}
