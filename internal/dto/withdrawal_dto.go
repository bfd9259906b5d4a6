package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BalanceResponse struct {
	WithdrawableBalance decimal.Decimal `json:"withdrawable_balance"`
	LifetimeEarnings    decimal.Decimal `json:"lifetime_earnings"`
	LifetimePaidOut     decimal.Decimal `json:"lifetime_paid_out"`
}

type PaymentMethodResponse struct {
	Id             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	MinWithdrawal  decimal.Decimal `json:"min_withdrawal"`
	MaxWithdrawal  decimal.Decimal `json:"max_withdrawal"`
	FeeType        string          `json:"fee_type"`
	FeeValue       decimal.Decimal `json:"fee_value"`
	RequiredFields []string        `json:"required_fields"`
}

type SubmitWithdrawalRequest struct {
	PaymentMethodId uuid.UUID         `json:"payment_method_id" validate:"required"`
	Amount          decimal.Decimal   `json:"amount"`
	PaymentDetails  map[string]string `json:"payment_details"`
}

type WithdrawalResponse struct {
	Id                   uuid.UUID         `json:"id"`
	Code                 string            `json:"code"`
	UserId               uuid.UUID         `json:"user_id"`
	PaymentMethodId      uuid.UUID         `json:"payment_method_id"`
	PaymentMethodName    string            `json:"payment_method_name,omitempty"`
	Amount               decimal.Decimal   `json:"amount"`
	ProcessingFee        decimal.Decimal   `json:"processing_fee"`
	NetAmount            decimal.Decimal   `json:"net_amount"`
	PaymentDetails       map[string]string `json:"payment_details,omitempty"`
	Status               string            `json:"status"`
	ProcessedBy          *uuid.UUID        `json:"processed_by,omitempty"`
	ProcessedAt          *time.Time        `json:"processed_at,omitempty"`
	TransactionReference string            `json:"transaction_reference,omitempty"`
	AdminNotes           string            `json:"admin_notes,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

type WithdrawalListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved processing completed rejected cancelled"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type WithdrawalListResponse struct {
	Items []WithdrawalResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// --- Admin processing ---

type ApproveWithdrawalRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type RejectWithdrawalRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

type CompleteWithdrawalRequest struct {
	TransactionReference string `json:"transaction_reference" validate:"max=255"`
	Notes                string `json:"notes,omitempty" validate:"max=2000"`
}
