package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SurveyResponse struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_survey_responses_user_survey,priority:1"`
	SurveyId          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_survey_responses_user_survey,priority:2;index"`
	Status            string     `gorm:"type:varchar(32);not null;index:idx_survey_responses_status_waiting,priority:1"`
	CompletionOutcome *string    `gorm:"type:varchar(32)"`
	ApprovalStatus    *string    `gorm:"type:varchar(32);index"`
	StartTime         time.Time  `gorm:"not null"`
	WaitingSince      *time.Time `gorm:"index:idx_survey_responses_status_waiting,priority:2"`
	CompletionTime    *time.Time
	ApprovalDate      *time.Time
	ApprovedBy        *uuid.UUID     `gorm:"type:uuid"`
	AdminNotes        string         `gorm:"type:text"`
	Country           string         `gorm:"type:varchar(64)"`
	IpAddress         string         `gorm:"type:varchar(64)"`
	UserAgent         string         `gorm:"type:text"`
	Referrer          string         `gorm:"type:text"`
	Payload           datatypes.JSON `gorm:"type:jsonb"`
	Round             int            `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}
