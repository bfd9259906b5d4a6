package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name           string                      `gorm:"type:varchar(100);not null"`
	MinWithdrawal  decimal.Decimal             `gorm:"type:numeric(12,2);not null"`
	MaxWithdrawal  decimal.Decimal             `gorm:"type:numeric(12,2);not null"`
	FeeType        string                      `gorm:"type:varchar(16);not null"`
	FeeValue       decimal.Decimal             `gorm:"type:numeric(12,2);not null"`
	RequiredFields datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	IsActive       bool                        `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

type WithdrawalRequest struct {
	Id                   uuid.UUID                             `gorm:"type:uuid;primaryKey"`
	Code                 string                                `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserId               uuid.UUID                             `gorm:"type:uuid;not null;index"`
	PaymentMethodId      uuid.UUID                             `gorm:"type:uuid;not null"`
	Amount               decimal.Decimal                       `gorm:"type:numeric(12,2);not null"`
	ProcessingFee        decimal.Decimal                       `gorm:"type:numeric(12,2);not null"`
	NetAmount            decimal.Decimal                       `gorm:"type:numeric(12,2);not null"`
	PaymentDetails       datatypes.JSONType[map[string]string] `gorm:"type:jsonb"`
	Status               string                                `gorm:"type:varchar(16);not null;index"`
	ProcessedBy          *uuid.UUID                            `gorm:"type:uuid"`
	ProcessedAt          *time.Time
	TransactionReference string `gorm:"type:varchar(128)"`
	AdminNotes           string `gorm:"type:text"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	PaymentMethod PaymentMethod `gorm:"foreignKey:PaymentMethodId"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
