package contract

import (
	"context"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/repository/specification"
)

type UserProfileRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserProfile, error)
}
