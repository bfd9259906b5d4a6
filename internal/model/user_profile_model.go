package model

import "github.com/google/uuid"

// UserProfile is maintained by the identity system; this service only reads it.
type UserProfile struct {
	UserId      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:varchar(255)"`
	DisplayName string    `gorm:"type:varchar(255)"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
