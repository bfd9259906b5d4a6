package entity

import "github.com/google/uuid"

// UserProfile is the contact record maintained by the identity system.
type UserProfile struct {
	UserId      uuid.UUID
	Email       string
	DisplayName string
}
