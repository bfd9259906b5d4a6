package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResponseStatus string

const (
	ResponseStatusWaiting     ResponseStatus = "waiting_to_complete"
	ResponseStatusNotComplete ResponseStatus = "not_complete"
	ResponseStatusCompleted   ResponseStatus = "completed"
)

type CompletionOutcome string

const (
	OutcomeSuccess       CompletionOutcome = "success"
	OutcomeQuotaComplete CompletionOutcome = "quota_complete"
	OutcomeDisqualified  CompletionOutcome = "disqualified"
	OutcomeAbandoned     CompletionOutcome = "abandoned"
)

// IsReportable reports whether the outcome may be supplied by a caller.
// Abandoned is reserved for the timeout reaper.
func (o CompletionOutcome) IsReportable() bool {
	switch o {
	case OutcomeSuccess, OutcomeQuotaComplete, OutcomeDisqualified:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalStatusPending      ApprovalStatus = "pending"
	ApprovalStatusApproved     ApprovalStatus = "approved"
	ApprovalStatusRejected     ApprovalStatus = "rejected"
	ApprovalStatusAutoApproved ApprovalStatus = "auto_approved"
)

// SurveyResponse is one user's attempt at one survey. Round counts how many
// times the row has been (re)opened.
type SurveyResponse struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	SurveyId          uuid.UUID
	Status            ResponseStatus
	CompletionOutcome *CompletionOutcome
	ApprovalStatus    *ApprovalStatus
	StartTime         time.Time
	WaitingSince      *time.Time
	CompletionTime    *time.Time
	ApprovalDate      *time.Time
	ApprovedBy        *uuid.UUID
	AdminNotes        string
	Country           string
	IpAddress         string
	UserAgent         string
	Referrer          string
	Payload           map[string]interface{}
	Round             int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (r *SurveyResponse) IsCompleted() bool {
	return r.Status == ResponseStatusCompleted
}

func (r *SurveyResponse) HasApproval(status ApprovalStatus) bool {
	return r.ApprovalStatus != nil && *r.ApprovalStatus == status
}

func (r *SurveyResponse) HasOutcome(outcome CompletionOutcome) bool {
	return r.CompletionOutcome != nil && *r.CompletionOutcome == outcome
}

// IsCredited reports whether the current round has released funds.
func (r *SurveyResponse) IsCredited() bool {
	if !r.HasOutcome(OutcomeSuccess) {
		return false
	}
	return r.HasApproval(ApprovalStatusApproved) || r.HasApproval(ApprovalStatusAutoApproved)
}

// Provenance carries request metadata recorded on start.
type Provenance struct {
	Country   string
	IpAddress string
	UserAgent string
	Referrer  string
}
