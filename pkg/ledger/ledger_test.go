package ledger_test

import (
	"context"
	"sync"
	"testing"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func inTx(t *testing.T, factory unitofwork.RepositoryFactory, fn func(uow unitofwork.UnitOfWork) error) error {
	t.Helper()
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

func setup(t *testing.T) (*gorm.DB, unitofwork.RepositoryFactory, *ledger.Ledger) {
	db := testutil.NewDB(t)
	return db, unitofwork.NewRepositoryFactory(db), ledger.New(logger.NewNopLogger())
}

func TestCredit_IdempotentReference(t *testing.T) {
	db, factory, l := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	ref := ledger.ResponseCreditRef(uuid.New(), 1)

	for i, want := range []bool{true, false} {
		err := inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
			applied, err := l.Credit(ctx, uow, userID, decimal.RequireFromString("10.00"), ref)
			assert.Equal(t, want, applied, "attempt %d", i)
			return err
		})
		require.NoError(t, err)
	}

	b := testutil.Balance(t, db, userID)
	require.NotNil(t, b)
	assert.True(t, b.WithdrawableBalance.Equal(decimal.RequireFromString("10")))
	assert.True(t, b.LifetimeEarnings.Equal(decimal.RequireFromString("10")))

	var journal int64
	require.NoError(t, db.Model(&model.BalanceTransaction{}).Where("reference = ?", ref).Count(&journal).Error)
	assert.Equal(t, int64(1), journal)
}

func TestDebit_NeverGoesNegative(t *testing.T) {
	db, factory, l := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedBalance(t, db, userID, "5.00")

	err := inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		_, err := l.Debit(ctx, uow, userID, decimal.RequireFromString("5.01"), ledger.WithdrawalDebitRef(uuid.New()))
		return err
	})
	assert.ErrorIs(t, err, entity.ErrInsufficientBalance)

	b := testutil.Balance(t, db, userID)
	assert.True(t, b.WithdrawableBalance.Equal(decimal.RequireFromString("5")))
}

func TestApply_RejectsNonPositiveAmounts(t *testing.T) {
	_, factory, l := setup(t)
	ctx := context.Background()

	for _, amount := range []string{"0", "-1", "0.001", "1.005"} {
		err := inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
			_, err := l.Credit(ctx, uow, uuid.New(), decimal.RequireFromString(amount), "ref-"+amount)
			return err
		})
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, amount)
	}
}

func TestDebit_ReplayAfterDrainIsNoop(t *testing.T) {
	db, factory, l := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedBalance(t, db, userID, "10.00")
	first := ledger.WithdrawalDebitRef(uuid.New())

	require.NoError(t, inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		_, err := l.Debit(ctx, uow, userID, decimal.RequireFromString("6"), first)
		return err
	}))
	require.NoError(t, inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		_, err := l.Debit(ctx, uow, userID, decimal.RequireFromString("4"), ledger.WithdrawalDebitRef(uuid.New()))
		return err
	}))

	var applied bool
	err := inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		var err error
		applied, err = l.Debit(ctx, uow, userID, decimal.RequireFromString("6"), first)
		return err
	})
	require.NoError(t, err)
	assert.False(t, applied)

	b := testutil.Balance(t, db, userID)
	assert.True(t, b.WithdrawableBalance.IsZero(), b.WithdrawableBalance.String())
}

func TestRefundAndPayout(t *testing.T) {
	db, factory, l := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	wd := uuid.New()
	testutil.SeedBalance(t, db, userID, "20.00")

	require.NoError(t, inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		if _, err := l.Debit(ctx, uow, userID, decimal.RequireFromString("15"), ledger.WithdrawalDebitRef(wd)); err != nil {
			return err
		}
		_, err := l.Refund(ctx, uow, userID, decimal.RequireFromString("15"), ledger.WithdrawalRefundRef(wd))
		return err
	}))
	b := testutil.Balance(t, db, userID)
	assert.True(t, b.WithdrawableBalance.Equal(decimal.RequireFromString("20")))
	assert.True(t, b.LifetimeEarnings.Equal(decimal.RequireFromString("20")))

	require.NoError(t, inTx(t, factory, func(uow unitofwork.UnitOfWork) error {
		_, err := l.RecordPayout(ctx, uow, userID, decimal.RequireFromString("7.5"), ledger.WithdrawalPayoutRef(wd))
		return err
	}))
	b = testutil.Balance(t, db, userID)
	assert.True(t, b.WithdrawableBalance.Equal(decimal.RequireFromString("20")))
	assert.True(t, b.LifetimePaidOut.Equal(decimal.RequireFromString("7.5")))
}

func TestDebit_ConcurrentRequestsDoNotOverdraw(t *testing.T) {
	db, factory, l := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedBalance(t, db, userID, "10.00")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow := factory.NewUnitOfWork(ctx)
			if err := uow.Begin(ctx); err != nil {
				return
			}
			defer uow.Rollback()
			if _, err := l.Debit(ctx, uow, userID, decimal.RequireFromString("4"), ledger.WithdrawalDebitRef(uuid.New())); err != nil {
				return
			}
			if uow.Commit() == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, accepted)
	b := testutil.Balance(t, db, userID)
	assert.True(t, b.WithdrawableBalance.Equal(decimal.RequireFromString("2")))
}

func TestBalance_MissingRowIsZero(t *testing.T) {
	_, factory, l := setup(t)
	b, err := l.Balance(context.Background(), factory.NewUnitOfWork(context.Background()), uuid.New())
	require.NoError(t, err)
	assert.True(t, b.WithdrawableBalance.IsZero())
}
