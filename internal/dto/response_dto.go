package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Participant side ---

type StartResponseRequest struct {
	Country  string `json:"country,omitempty" validate:"omitempty,len=2"`
	Referrer string `json:"referrer,omitempty" validate:"omitempty,max=2048"`
}

type StartResponseResponse struct {
	ResponseId uuid.UUID `json:"response_id"`
	Status     string    `json:"status"`
	Round      int       `json:"round"`
	Reopened   bool      `json:"reopened"`
}

type CompleteResponseRequest struct {
	Outcome string                 `json:"outcome" validate:"required"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

type CompleteResponseResponse struct {
	ResponseId     uuid.UUID `json:"response_id"`
	Status         string    `json:"status"`
	Outcome        string    `json:"outcome"`
	ApprovalStatus string    `json:"approval_status"`
	Credited       bool      `json:"credited"`
	Idempotent     bool      `json:"idempotent"`
}

type ResponseListQuery struct {
	Status         string `query:"status" validate:"omitempty,oneof=waiting_to_complete not_complete completed"`
	ApprovalStatus string `query:"approval_status" validate:"omitempty,oneof=pending approved rejected auto_approved"`
	SurveyId       string `query:"survey_id" validate:"omitempty,uuid"`
	Page           int    `query:"page" validate:"omitempty,min=1"`
	Limit          int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type ResponseListItem struct {
	Id                uuid.UUID  `json:"id"`
	UserId            uuid.UUID  `json:"user_id"`
	SurveyId          uuid.UUID  `json:"survey_id"`
	Status            string     `json:"status"`
	CompletionOutcome string     `json:"completion_outcome,omitempty"`
	ApprovalStatus    string     `json:"approval_status,omitempty"`
	Round             int        `json:"round"`
	StartTime         time.Time  `json:"start_time"`
	CompletionTime    *time.Time `json:"completion_time,omitempty"`
	ApprovalDate      *time.Time `json:"approval_date,omitempty"`
	AdminNotes        string     `json:"admin_notes,omitempty"`
	Country           string     `json:"country,omitempty"`
}

type ResponseListResponse struct {
	Items []ResponseListItem `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// --- Admin review ---

type ReviewResponseRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type ReviewResponseResponse struct {
	ResponseId     uuid.UUID       `json:"response_id"`
	Status         string          `json:"status"`
	ApprovalStatus string          `json:"approval_status,omitempty"`
	ApprovedBy     *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovalDate   *time.Time      `json:"approval_date,omitempty"`
	Credited       decimal.Decimal `json:"credited"`
	Round          int             `json:"round"`
	Warning        string          `json:"warning,omitempty"`
}

// --- Surveys ---

type AvailableSurveyResponse struct {
	Id                 uuid.UUID       `json:"id"`
	Title              string          `json:"title"`
	IsPaid             bool            `json:"is_paid"`
	Amount             decimal.Decimal `json:"amount"`
	MinDurationMinutes int             `json:"min_duration_minutes"`
	MaxDurationMinutes int             `json:"max_duration_minutes"`
}

type ResumeSurveyResponse struct {
	SurveyId uuid.UUID `json:"survey_id"`
	IsPaused bool      `json:"is_paused"`
	Resumed  bool      `json:"resumed"`
}

type CallbackURLsResponse struct {
	SurveyId uuid.UUID         `json:"survey_id"`
	URLs     map[string]string `json:"urls"`
	Fallback map[string]string `json:"fallback_urls"`
}

type ReaperRunResponse struct {
	Reaped    int64     `json:"reaped"`
	Cutoff    time.Time `json:"cutoff"`
	Threshold string    `json:"threshold"`
}
