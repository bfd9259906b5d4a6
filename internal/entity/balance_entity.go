package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserBalance struct {
	UserId              uuid.UUID
	WithdrawableBalance decimal.Decimal
	LifetimeEarnings    decimal.Decimal
	LifetimePaidOut     decimal.Decimal
	UpdatedAt           time.Time
}

type BalanceTransactionType string

const (
	BalanceTxCredit BalanceTransactionType = "credit"
	BalanceTxDebit  BalanceTransactionType = "debit"
	BalanceTxRefund BalanceTransactionType = "refund"
	BalanceTxPayout BalanceTransactionType = "payout"
)

// BalanceTransaction journals one ledger mutation. Reference is unique and
// doubles as the idempotency key.
type BalanceTransaction struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Type      BalanceTransactionType
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}
