package service

import (
	"context"
	"strings"
	"testing"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitRequest(methodID uuid.UUID, amount string) *dto.SubmitWithdrawalRequest {
	return &dto.SubmitWithdrawalRequest{
		PaymentMethodId: methodID,
		Amount:          decimal.RequireFromString(amount),
		PaymentDetails:  map[string]string{"email": "member@example.com"},
	}
}

func TestSubmitWithdrawal_Fees(t *testing.T) {
	tests := []struct {
		name     string
		feeType  string
		feeValue string
		amount   string
		wantFee  string
		wantNet  string
	}{
		{"percentage", "percentage", "2.5", "100.00", "2.50", "97.50"},
		{"fixed", "fixed", "5", "100.00", "5.00", "95.00"},
		{"none", "none", "0", "100.00", "0.00", "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID := uuid.New()
			testutil.SeedBalance(t, env.db, userID, "100.00")
			method := testutil.SeedPaymentMethod(t, env.db, func(m *model.PaymentMethod) {
				m.FeeType = tt.feeType
				m.FeeValue = decimal.RequireFromString(tt.feeValue)
			})

			res, err := env.withdrawals.SubmitWithdrawal(context.Background(), userID, submitRequest(method.Id, tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFee, res.ProcessingFee.StringFixed(2))
			assert.Equal(t, tt.wantNet, res.NetAmount.StringFixed(2))
			assert.Equal(t, string(entity.WithdrawalStatusPending), res.Status)
			assert.True(t, strings.HasPrefix(res.Code, "WD-"))

			assert.Equal(t, "0.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))
		})
	}
}

func TestSubmitWithdrawal_Validation(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		method  func(*model.PaymentMethod)
		req     func(methodID uuid.UUID) *dto.SubmitWithdrawalRequest
		wantErr error
	}{
		{
			name:    "inactive method",
			balance: "50.00",
			method:  func(m *model.PaymentMethod) { m.IsActive = false },
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "10.00") },
			wantErr: entity.ErrMethodInactive,
		},
		{
			name:    "below minimum",
			balance: "50.00",
			method:  func(m *model.PaymentMethod) { m.MinWithdrawal = decimal.RequireFromString("5.00") },
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "4.99") },
			wantErr: entity.ErrBelowMinimum,
		},
		{
			name:    "above maximum",
			balance: "50.00",
			method:  func(m *model.PaymentMethod) { m.MaxWithdrawal = decimal.RequireFromString("20.00") },
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "20.01") },
			wantErr: entity.ErrAboveMaximum,
		},
		{
			name:    "insufficient balance",
			balance: "9.99",
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "10.00") },
			wantErr: entity.ErrInsufficientBalance,
		},
		{
			name:    "missing payment detail",
			balance: "50.00",
			req: func(id uuid.UUID) *dto.SubmitWithdrawalRequest {
				r := submitRequest(id, "10.00")
				r.PaymentDetails = map[string]string{"email": "  "}
				return r
			},
			wantErr: entity.ErrMissingPaymentDetail,
		},
		{
			name:    "fee swallows the amount",
			balance: "50.00",
			method: func(m *model.PaymentMethod) {
				m.FeeType = "fixed"
				m.FeeValue = decimal.RequireFromString("5.00")
			},
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "5.00") },
			wantErr: entity.ErrFeeExceedsAmount,
		},
		{
			name:    "sub-cent amount",
			balance: "50.00",
			req:     func(id uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(id, "10.001") },
			wantErr: entity.ErrInvalidAmount,
		},
		{
			name:    "unknown method",
			balance: "50.00",
			req:     func(uuid.UUID) *dto.SubmitWithdrawalRequest { return submitRequest(uuid.New(), "10.00") },
			wantErr: entity.ErrPaymentMethodNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID := uuid.New()
			testutil.SeedBalance(t, env.db, userID, tt.balance)
			var opts []func(*model.PaymentMethod)
			if tt.method != nil {
				opts = append(opts, tt.method)
			}
			method := testutil.SeedPaymentMethod(t, env.db, opts...)

			_, err := env.withdrawals.SubmitWithdrawal(context.Background(), userID, tt.req(method.Id))
			assert.ErrorIs(t, err, tt.wantErr)

			// Nothing moves on failure.
			assert.Equal(t, tt.balance, testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))
			var count int64
			require.NoError(t, env.db.Model(&model.WithdrawalRequest{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestCancelWithdrawal_RefundsAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedBalance(t, env.db, userID, "30.00")
	method := testutil.SeedPaymentMethod(t, env.db, func(m *model.PaymentMethod) {
		m.FeeType = "fixed"
		m.FeeValue = decimal.RequireFromString("1.00")
	})

	submitted, err := env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "20.00"))
	require.NoError(t, err)
	assert.Equal(t, "10.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	_, err = env.withdrawals.CancelWithdrawal(ctx, uuid.New(), submitted.Id)
	assert.ErrorIs(t, err, entity.ErrNotCancellable)

	cancelled, err := env.withdrawals.CancelWithdrawal(ctx, userID, submitted.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WithdrawalStatusCancelled), cancelled.Status)

	balance := testutil.Balance(t, env.db, userID)
	assert.Equal(t, "30.00", balance.WithdrawableBalance.StringFixed(2))
	assert.Equal(t, "30.00", balance.LifetimeEarnings.StringFixed(2))

	_, err = env.withdrawals.CancelWithdrawal(ctx, userID, submitted.Id)
	assert.ErrorIs(t, err, entity.ErrNotCancellable)
	assert.Equal(t, "30.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	assert.Len(t, env.publisher.OfType(events.TypeWithdrawalCancelled), 1)
}

func TestRejectWithdrawal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()
	testutil.SeedBalance(t, env.db, userID, "25.00")
	method := testutil.SeedPaymentMethod(t, env.db)

	submitted, err := env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "25.00"))
	require.NoError(t, err)

	_, err = env.withdrawals.RejectWithdrawal(ctx, submitted.Id, adminID, "")
	assert.ErrorIs(t, err, entity.ErrReasonRequired)

	rejected, err := env.withdrawals.RejectWithdrawal(ctx, submitted.Id, adminID, "account name mismatch")
	require.NoError(t, err)
	assert.Equal(t, string(entity.WithdrawalStatusRejected), rejected.Status)
	assert.Equal(t, &adminID, rejected.ProcessedBy)
	assert.Equal(t, "account name mismatch", rejected.AdminNotes)
	assert.Equal(t, "25.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	_, err = env.withdrawals.RejectWithdrawal(ctx, submitted.Id, adminID, "again")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Equal(t, "25.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	ev := env.publisher.OfType(events.TypeWithdrawalRejected)
	require.Len(t, ev, 1)
	assert.Equal(t, "account name mismatch", ev[0].(events.WithdrawalChanged).Reason)
}

func TestWithdrawalTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()
	testutil.SeedBalance(t, env.db, userID, "50.00")
	method := testutil.SeedPaymentMethod(t, env.db)

	submitted, err := env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "40.00"))
	require.NoError(t, err)

	_, err = env.withdrawals.CompleteWithdrawal(ctx, submitted.Id, adminID, "TX1", "")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	_, err = env.withdrawals.MarkWithdrawalProcessing(ctx, submitted.Id, adminID)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	_, err = env.withdrawals.ApproveWithdrawal(ctx, submitted.Id, adminID, "ok")
	require.NoError(t, err)

	_, err = env.withdrawals.CancelWithdrawal(ctx, userID, submitted.Id)
	assert.ErrorIs(t, err, entity.ErrNotCancellable)

	processing, err := env.withdrawals.MarkWithdrawalProcessing(ctx, submitted.Id, adminID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.WithdrawalStatusProcessing), processing.Status)

	_, err = env.withdrawals.CompleteWithdrawal(ctx, submitted.Id, adminID, " ", "")
	assert.ErrorIs(t, err, entity.ErrReferenceRequired)

	completed, err := env.withdrawals.CompleteWithdrawal(ctx, submitted.Id, adminID, "TX-777", "sent")
	require.NoError(t, err)
	assert.Equal(t, string(entity.WithdrawalStatusCompleted), completed.Status)
	assert.Equal(t, "TX-777", completed.TransactionReference)

	balance := testutil.Balance(t, env.db, userID)
	assert.Equal(t, "10.00", balance.WithdrawableBalance.StringFixed(2))
	assert.Equal(t, "40.00", balance.LifetimePaidOut.StringFixed(2))

	_, err = env.withdrawals.CompleteWithdrawal(ctx, submitted.Id, adminID, "TX-778", "")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	_, err = env.withdrawals.ApproveWithdrawal(ctx, uuid.New(), adminID, "")
	assert.ErrorIs(t, err, entity.ErrWithdrawalNotFound)
}

func TestListWithdrawals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedBalance(t, env.db, userID, "50.00")
	method := testutil.SeedPaymentMethod(t, env.db)

	first, err := env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "10.00"))
	require.NoError(t, err)
	_, err = env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "10.00"))
	require.NoError(t, err)
	_, err = env.withdrawals.CancelWithdrawal(ctx, userID, first.Id)
	require.NoError(t, err)

	mine, err := env.withdrawals.ListMine(ctx, userID, dto.WithdrawalListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.Total)
	for _, item := range mine.Items {
		assert.Equal(t, "PayPal", item.PaymentMethodName)
	}

	pending, err := env.withdrawals.ListAll(ctx, dto.WithdrawalListQuery{Status: "pending"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Total)

	others, err := env.withdrawals.ListMine(ctx, uuid.New(), dto.WithdrawalListQuery{})
	require.NoError(t, err)
	assert.Zero(t, others.Total)
}

func TestListPaymentMethods_OnlyActive(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedPaymentMethod(t, env.db)
	testutil.SeedPaymentMethod(t, env.db, func(m *model.PaymentMethod) {
		m.Name = "Bank transfer"
		m.IsActive = false
	})

	methods, err := env.withdrawals.ListPaymentMethods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "PayPal", methods[0].Name)
	assert.Equal(t, []string{"email"}, methods[0].RequiredFields)
}

// A member earns 10.00 from one approved response and withdraws it through a
// method charging a 1.00 fixed fee.
func TestEarnAndWithdrawEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := uuid.New()
	adminID := uuid.New()
	survey := testutil.SeedSurvey(t, env.db)
	method := testutil.SeedPaymentMethod(t, env.db, func(m *model.PaymentMethod) {
		m.FeeType = "fixed"
		m.FeeValue = decimal.RequireFromString("1.00")
	})

	started, err := env.responses.StartResponse(ctx, userID, survey.Id, entity.Provenance{Country: "DE"})
	require.NoError(t, err)

	completed, err := env.responses.CompleteResponse(ctx, userID, survey.Id, entity.OutcomeSuccess, nil)
	require.NoError(t, err)
	assert.Equal(t, started.ResponseId, completed.ResponseId)
	assert.Equal(t, string(entity.ApprovalStatusPending), completed.ApprovalStatus)

	_, err = env.responses.ApproveResponse(ctx, completed.ResponseId, adminID, "")
	require.NoError(t, err)

	balance, err := env.withdrawals.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", balance.WithdrawableBalance.StringFixed(2))

	w, err := env.withdrawals.SubmitWithdrawal(ctx, userID, submitRequest(method.Id, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, "1.00", w.ProcessingFee.StringFixed(2))
	assert.Equal(t, "9.00", w.NetAmount.StringFixed(2))

	_, err = env.withdrawals.ApproveWithdrawal(ctx, w.Id, adminID, "")
	require.NoError(t, err)
	_, err = env.withdrawals.CompleteWithdrawal(ctx, w.Id, adminID, "TX123", "")
	require.NoError(t, err)

	balance, err = env.withdrawals.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", balance.WithdrawableBalance.StringFixed(2))
	assert.Equal(t, "10.00", balance.LifetimeEarnings.StringFixed(2))
	assert.Equal(t, "9.00", balance.LifetimePaidOut.StringFixed(2))

	var journal []model.BalanceTransaction
	require.NoError(t, env.db.Where("user_id = ?", userID).Order("created_at").Find(&journal).Error)
	types := make([]string, 0, len(journal))
	for _, j := range journal {
		types = append(types, j.Type)
	}
	assert.ElementsMatch(t, []string{"credit", "debit", "payout"}, types)
}
