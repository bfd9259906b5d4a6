package implementation

import (
	"context"
	"errors"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type balanceRepositoryImpl struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) contract.BalanceRepository {
	return &balanceRepositoryImpl{db: db}
}

func (r *balanceRepositoryImpl) EnsureExists(ctx context.Context, userId uuid.UUID) error {
	row := &model.UserBalance{
		UserId:              userId,
		WithdrawableBalance: decimal.Zero,
		LifetimeEarnings:    decimal.Zero,
		LifetimePaidOut:     decimal.Zero,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error
}

func (r *balanceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserBalance, error) {
	var m model.UserBalance
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

	return &entity.UserBalance{
		UserId:              m.UserId,
		WithdrawableBalance: m.WithdrawableBalance,
		LifetimeEarnings:    m.LifetimeEarnings,
		LifetimePaidOut:     m.LifetimePaidOut,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

func (r *balanceRepositoryImpl) Update(ctx context.Context, balance *entity.UserBalance) error {
	return r.db.WithContext(ctx).Model(&model.UserBalance{}).
		Where("user_id = ?", balance.UserId).
		Updates(map[string]interface{}{
			"withdrawable_balance": balance.WithdrawableBalance,
			"lifetime_earnings":    balance.LifetimeEarnings,
			"lifetime_paid_out":    balance.LifetimePaidOut,
		}).Error
}

func (r *balanceRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.BalanceTransaction) (bool, error) {
	row := &model.BalanceTransaction{
		Id:        tx.Id,
		UserId:    tx.UserId,
		Type:      string(tx.Type),
		Amount:    tx.Amount,
		Reference: tx.Reference,
		CreatedAt: tx.CreatedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "reference"}}, DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *balanceRepositoryImpl) FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.BalanceTransaction, error) {
	var models []*model.BalanceTransaction
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	txs := make([]*entity.BalanceTransaction, 0, len(models))
	for _, m := range models {
		txs = append(txs, &entity.BalanceTransaction{
			Id:        m.Id,
			UserId:    m.UserId,
			Type:      entity.BalanceTransactionType(m.Type),
			Amount:    m.Amount,
			Reference: m.Reference,
			CreatedAt: m.CreatedAt,
		})
	}
	return txs, nil
}
