package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySurveyID struct {
	SurveyID uuid.UUID
}

func (s BySurveyID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("survey_id = ?", s.SurveyID)
}

// ByUserAndSurvey matches the single response row of a (user, survey) pair.
type ByUserAndSurvey struct {
	UserID   uuid.UUID
	SurveyID uuid.UUID
}

func (s ByUserAndSurvey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND survey_id = ?", s.UserID, s.SurveyID)
}

type ByApprovalStatus struct {
	ApprovalStatus string
}

func (s ByApprovalStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("approval_status = ?", s.ApprovalStatus)
}

// WaitingSinceBefore selects rows still waiting whose wait began before Cutoff.
type WaitingSinceBefore struct {
	Cutoff time.Time
}

func (s WaitingSinceBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND waiting_since IS NOT NULL AND waiting_since < ?", "waiting_to_complete", s.Cutoff)
}
