// Package ledger owns every mutation of a user's balance row.
//
// All operations run on the caller's unit of work, which must already be
// inside a transaction, so a balance change commits or rolls back together
// with the write that triggered it. Each mutation locks the balance row and
// journals a balance_transactions row whose reference is unique: replaying a
// reference is a no-op.
package ledger

import (
	"context"
	"fmt"
	"time"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	logger logger.ILogger
	now    func() time.Time
}

func New(logger logger.ILogger) *Ledger {
	return &Ledger{
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Credit adds earnings to the withdrawable balance and lifetime earnings.
func (l *Ledger) Credit(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, amount decimal.Decimal, reference string) (bool, error) {
	return l.apply(ctx, uow, userId, entity.BalanceTxCredit, amount, reference, func(b *entity.UserBalance, amt decimal.Decimal) error {
		b.WithdrawableBalance = b.WithdrawableBalance.Add(amt)
		b.LifetimeEarnings = b.LifetimeEarnings.Add(amt)
		return nil
	})
}

// Debit removes funds from the withdrawable balance. It never lets the
// balance go negative.
func (l *Ledger) Debit(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, amount decimal.Decimal, reference string) (bool, error) {
	return l.apply(ctx, uow, userId, entity.BalanceTxDebit, amount, reference, func(b *entity.UserBalance, amt decimal.Decimal) error {
		if amt.GreaterThan(b.WithdrawableBalance) {
			return entity.ErrInsufficientBalance
		}
		b.WithdrawableBalance = b.WithdrawableBalance.Sub(amt)
		return nil
	})
}

// Refund returns previously debited funds. Lifetime earnings are untouched.
func (l *Ledger) Refund(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, amount decimal.Decimal, reference string) (bool, error) {
	return l.apply(ctx, uow, userId, entity.BalanceTxRefund, amount, reference, func(b *entity.UserBalance, amt decimal.Decimal) error {
		b.WithdrawableBalance = b.WithdrawableBalance.Add(amt)
		return nil
	})
}

// RecordPayout tracks money that left the system. The withdrawable balance
// was already debited at submission.
func (l *Ledger) RecordPayout(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, netAmount decimal.Decimal, reference string) (bool, error) {
	return l.apply(ctx, uow, userId, entity.BalanceTxPayout, netAmount, reference, func(b *entity.UserBalance, amt decimal.Decimal) error {
		b.LifetimePaidOut = b.LifetimePaidOut.Add(amt)
		return nil
	})
}

// Balance reads the current balance; a user without a row has a zero balance.
func (l *Ledger) Balance(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.UserBalance, error) {
	balance, err := uow.BalanceRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance == nil {
		return &entity.UserBalance{
			UserId:              userId,
			WithdrawableBalance: decimal.Zero,
			LifetimeEarnings:    decimal.Zero,
			LifetimePaidOut:     decimal.Zero,
		}, nil
	}
	return balance, nil
}

func (l *Ledger) apply(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	userId uuid.UUID,
	txType entity.BalanceTransactionType,
	amount decimal.Decimal,
	reference string,
	mutate func(b *entity.UserBalance, amt decimal.Decimal) error,
) (bool, error) {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return false, entity.ErrInvalidAmount
	}

	repo := uow.BalanceRepository()
	if err := repo.EnsureExists(ctx, userId); err != nil {
		return false, fmt.Errorf("ensure balance row: %w", err)
	}

	balance, err := repo.FindOne(ctx, specification.ByUserID{UserID: userId}, specification.ForUpdate{})
	if err != nil {
		return false, fmt.Errorf("lock balance: %w", err)
	}
	if balance == nil {
		return false, fmt.Errorf("balance row for user %s vanished", userId)
	}

	// Checked under the row lock so a replay is a no-op even when the
	// balance has moved since the first application.
	seen, err := repo.FindTransactions(ctx, specification.ByReference{Reference: reference}, specification.Pagination{Limit: 1})
	if err != nil {
		return false, fmt.Errorf("look up reference: %w", err)
	}
	if len(seen) > 0 {
		l.logDuplicate(userId, txType, reference)
		return false, nil
	}

	if err := mutate(balance, amount); err != nil {
		l.logger.Warn(logger.ModuleLedger, "Balance mutation refused", map[string]interface{}{
			"userId":    userId.String(),
			"type":      string(txType),
			"amount":    amount.StringFixed(2),
			"available": balance.WithdrawableBalance.StringFixed(2),
			"reference": reference,
			"error":     err.Error(),
		})
		return false, err
	}

	now := l.now()
	inserted, err := repo.CreateTransaction(ctx, &entity.BalanceTransaction{
		Id:        uuid.New(),
		UserId:    userId,
		Type:      txType,
		Amount:    amount,
		Reference: reference,
		CreatedAt: now,
	})
	if err != nil {
		return false, fmt.Errorf("journal %s: %w", txType, err)
	}
	if !inserted {
		l.logDuplicate(userId, txType, reference)
		return false, nil
	}

	balance.UpdatedAt = now
	if err := repo.Update(ctx, balance); err != nil {
		return false, fmt.Errorf("update balance: %w", err)
	}

	l.logger.Info(logger.ModuleLedger, "Balance updated", map[string]interface{}{
		"userId":       userId.String(),
		"type":         string(txType),
		"amount":       amount.StringFixed(2),
		"withdrawable": balance.WithdrawableBalance.StringFixed(2),
		"reference":    reference,
	})
	return true, nil
}

func (l *Ledger) logDuplicate(userId uuid.UUID, txType entity.BalanceTransactionType, reference string) {
	l.logger.Info(logger.ModuleLedger, "Duplicate ledger reference ignored", map[string]interface{}{
		"userId":    userId.String(),
		"type":      string(txType),
		"reference": reference,
	})
}

// References used as idempotency keys.

func ResponseCreditRef(responseId uuid.UUID, round int) string {
	return fmt.Sprintf("response:%s:%d", responseId, round)
}

func WithdrawalDebitRef(withdrawalId uuid.UUID) string {
	return fmt.Sprintf("withdrawal:%s:debit", withdrawalId)
}

func WithdrawalRefundRef(withdrawalId uuid.UUID) string {
	return fmt.Sprintf("withdrawal:%s:refund", withdrawalId)
}

func WithdrawalPayoutRef(withdrawalId uuid.UUID) string {
	return fmt.Sprintf("withdrawal:%s:payout", withdrawalId)
}
