package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PausedReasonQuotaFull = "quota_full"

// Survey is the survey configuration plus its quota state. Configuration is
// owned by the survey catalog; only the quota fields are written here.
type Survey struct {
	Id                       uuid.UUID
	Title                    string
	IsActive                 bool
	IsPaid                   bool
	Amount                   decimal.Decimal
	AutoApprove              bool
	AllowMultipleSubmissions bool
	MinDurationMinutes       int
	MaxDurationMinutes       int
	NotifyOnQuotaFull        bool
	ManagerId                *uuid.UUID
	CallbackSecret           string
	IsPaused                 bool
	PausedReason             string
	PausedAt                 *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// IsAvailable reports whether new starts are accepted.
func (s *Survey) IsAvailable() bool {
	return s.IsActive && !s.IsPaused
}

// SurveyStats aggregates the responses of one survey.
type SurveyStats struct {
	SurveyId          uuid.UUID `json:"survey_id"`
	Participants      int64     `json:"participants"`
	SuccessCount      int64     `json:"success_count"`
	QuotaCount        int64     `json:"quota_count"`
	DisqualifiedCount int64     `json:"disqualified_count"`
}

// Reward is what one approved success pays. Unpaid surveys pay nothing.
func (s *Survey) Reward() decimal.Decimal {
	if !s.IsPaid {
		return decimal.Zero
	}
	return s.Amount
}
