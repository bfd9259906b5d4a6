package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusApproved   WithdrawalStatus = "approved"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusRejected   WithdrawalStatus = "rejected"
	WithdrawalStatusCancelled  WithdrawalStatus = "cancelled"
)

// WithdrawalRequest never changes Amount, ProcessingFee or NetAmount after
// creation.
type WithdrawalRequest struct {
	Id                   uuid.UUID
	Code                 string
	UserId               uuid.UUID
	PaymentMethodId      uuid.UUID
	Amount               decimal.Decimal
	ProcessingFee        decimal.Decimal
	NetAmount            decimal.Decimal
	PaymentDetails       map[string]string
	Status               WithdrawalStatus
	ProcessedBy          *uuid.UUID
	ProcessedAt          *time.Time
	TransactionReference string
	AdminNotes           string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Populated by detail queries only.
	PaymentMethodName string
}
