package implementation

import (
	"context"
	"errors"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"

	"gorm.io/gorm"
)

type userProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) contract.UserProfileRepository {
	return &userProfileRepositoryImpl{db: db}
}

func (r *userProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserProfile, error) {
	var m model.UserProfile
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &entity.UserProfile{
		UserId:      m.UserId,
		Email:       m.Email,
		DisplayName: m.DisplayName,
	}, nil
}
