package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailableSurveys excludes inactive and paused surveys.
type AvailableSurveys struct{}

func (s AvailableSurveys) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ? AND is_paused = ?", true, false)
}

// NotCompletedBy excludes surveys the user has a completed response for,
// unless the survey accepts repeat submissions.
type NotCompletedBy struct {
	UserID uuid.UUID
}

func (s NotCompletedBy) Apply(db *gorm.DB) *gorm.DB {
	completed := db.Session(&gorm.Session{NewDB: true}).
		Table("survey_responses").
		Select("survey_id").
		Where("user_id = ? AND status = ?", s.UserID, "completed")
	return db.Where("allow_multiple_submissions = ? OR id NOT IN (?)", true, completed)
}
