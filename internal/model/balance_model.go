package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserBalance struct {
	UserId              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WithdrawableBalance decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LifetimeEarnings    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LifetimePaidOut     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	UpdatedAt           time.Time
}

func (UserBalance) TableName() string {
	return "user_balances"
}

type BalanceTransaction struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type      string          `gorm:"type:varchar(16);not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Reference string          `gorm:"type:varchar(128);not null;uniqueIndex"`
	CreatedAt time.Time
}

func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
