package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeResponseCompleted    = "RESPONSE_COMPLETED"
	TypeResponseApproved     = "RESPONSE_APPROVED"
	TypeResponseRejected     = "RESPONSE_REJECTED"
	TypeResponseReset        = "RESPONSE_RESET"
	TypeResponsesReaped      = "RESPONSES_REAPED"
	TypeSurveyAutoPaused     = "SURVEY_AUTO_PAUSED"
	TypeSurveyResumed        = "SURVEY_RESUMED"
	TypeWithdrawalSubmitted  = "WITHDRAWAL_SUBMITTED"
	TypeWithdrawalCancelled  = "WITHDRAWAL_CANCELLED"
	TypeWithdrawalApproved   = "WITHDRAWAL_APPROVED"
	TypeWithdrawalProcessing = "WITHDRAWAL_PROCESSING"
	TypeWithdrawalRejected   = "WITHDRAWAL_REJECTED"
	TypeWithdrawalCompleted  = "WITHDRAWAL_COMPLETED"
)

type ResponseCompleted struct {
	ResponseID     uuid.UUID       `json:"response_id"`
	UserID         uuid.UUID       `json:"user_id"`
	SurveyID       uuid.UUID       `json:"survey_id"`
	Outcome        string          `json:"outcome"`
	ApprovalStatus string          `json:"approval_status"`
	Amount         decimal.Decimal `json:"amount"`
	Credited       bool            `json:"credited"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (e ResponseCompleted) EventType() string               { return TypeResponseCompleted }
func (e ResponseCompleted) Timestamp() time.Time            { return e.OccurredAt }
func (e ResponseCompleted) Payload() map[string]interface{} { return toMap(e) }

type ResponseApproved struct {
	ResponseID uuid.UUID       `json:"response_id"`
	UserID     uuid.UUID       `json:"user_id"`
	SurveyID   uuid.UUID       `json:"survey_id"`
	SurveyName string          `json:"survey_name"`
	AdminID    uuid.UUID       `json:"admin_id"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e ResponseApproved) EventType() string               { return TypeResponseApproved }
func (e ResponseApproved) Timestamp() time.Time            { return e.OccurredAt }
func (e ResponseApproved) Payload() map[string]interface{} { return toMap(e) }

type ResponseRejected struct {
	ResponseID uuid.UUID `json:"response_id"`
	UserID     uuid.UUID `json:"user_id"`
	SurveyID   uuid.UUID `json:"survey_id"`
	SurveyName string    `json:"survey_name"`
	AdminID    uuid.UUID `json:"admin_id"`
	Notes      string    `json:"notes"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ResponseRejected) EventType() string               { return TypeResponseRejected }
func (e ResponseRejected) Timestamp() time.Time            { return e.OccurredAt }
func (e ResponseRejected) Payload() map[string]interface{} { return toMap(e) }

type ResponseReset struct {
	ResponseID  uuid.UUID `json:"response_id"`
	UserID      uuid.UUID `json:"user_id"`
	SurveyID    uuid.UUID `json:"survey_id"`
	AdminID     uuid.UUID `json:"admin_id"`
	WasCredited bool      `json:"was_credited"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e ResponseReset) EventType() string               { return TypeResponseReset }
func (e ResponseReset) Timestamp() time.Time            { return e.OccurredAt }
func (e ResponseReset) Payload() map[string]interface{} { return toMap(e) }

type ResponsesReaped struct {
	ResponseIDs []uuid.UUID `json:"response_ids"`
	Count       int64       `json:"count"`
	Threshold   string      `json:"threshold"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

func (e ResponsesReaped) EventType() string               { return TypeResponsesReaped }
func (e ResponsesReaped) Timestamp() time.Time            { return e.OccurredAt }
func (e ResponsesReaped) Payload() map[string]interface{} { return toMap(e) }

type SurveyAutoPaused struct {
	SurveyID          uuid.UUID  `json:"survey_id"`
	SurveyName        string     `json:"survey_name"`
	ManagerID         *uuid.UUID `json:"manager_id,omitempty"`
	Participants      int64      `json:"participants"`
	SuccessCount      int64      `json:"success_count"`
	QuotaCount        int64      `json:"quota_count"`
	DisqualifiedCount int64      `json:"disqualified_count"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

func (e SurveyAutoPaused) EventType() string               { return TypeSurveyAutoPaused }
func (e SurveyAutoPaused) Timestamp() time.Time            { return e.OccurredAt }
func (e SurveyAutoPaused) Payload() map[string]interface{} { return toMap(e) }

type SurveyResumed struct {
	SurveyID   uuid.UUID `json:"survey_id"`
	AdminID    uuid.UUID `json:"admin_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e SurveyResumed) EventType() string               { return TypeSurveyResumed }
func (e SurveyResumed) Timestamp() time.Time            { return e.OccurredAt }
func (e SurveyResumed) Payload() map[string]interface{} { return toMap(e) }

// WithdrawalChanged is emitted for every withdrawal transition; Type tells
// which one.
type WithdrawalChanged struct {
	Type         string          `json:"type"`
	WithdrawalID uuid.UUID       `json:"withdrawal_id"`
	Code         string          `json:"code"`
	UserID       uuid.UUID       `json:"user_id"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Fee          decimal.Decimal `json:"fee"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Method       string          `json:"method,omitempty"`
	ActorID      *uuid.UUID      `json:"actor_id,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (e WithdrawalChanged) EventType() string               { return e.Type }
func (e WithdrawalChanged) Timestamp() time.Time            { return e.OccurredAt }
func (e WithdrawalChanged) Payload() map[string]interface{} { return toMap(e) }
