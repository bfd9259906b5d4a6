package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FeeType string

const (
	FeeTypeNone       FeeType = "none"
	FeeTypeFixed      FeeType = "fixed"
	FeeTypePercentage FeeType = "percentage"
)

// PaymentMethod is reference data for withdrawals. A zero MaxWithdrawal
// means unbounded.
type PaymentMethod struct {
	Id             uuid.UUID
	Name           string
	MinWithdrawal  decimal.Decimal
	MaxWithdrawal  decimal.Decimal
	FeeType        FeeType
	FeeValue       decimal.Decimal
	RequiredFields []string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m *PaymentMethod) HasMaximum() bool {
	return m.MaxWithdrawal.IsPositive()
}
