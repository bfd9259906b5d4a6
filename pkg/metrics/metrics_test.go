package metrics

import (
	"context"
	"testing"

	"survey-payout-be/pkg/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCountsEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, &events.ResponseApproved{Amount: decimal.NewFromInt(10)}))
	require.NoError(t, m.Handle(ctx, &events.ResponseCompleted{
		Outcome: "success", ApprovalStatus: "auto_approved", Amount: decimal.NewFromInt(3), Credited: true,
	}))
	require.NoError(t, m.Handle(ctx, &events.WithdrawalChanged{Status: "pending", Amount: decimal.NewFromInt(50)}))
	require.NoError(t, m.Handle(ctx, &events.ResponsesReaped{Count: 4}))

	assert.Equal(t, float64(13), testutil.ToFloat64(m.EarningsCreditedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResponsesReviewedTotal.WithLabelValues("approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResponsesCompletedTotal.WithLabelValues("success", "auto_approved")))
	assert.Equal(t, float64(50), testutil.ToFloat64(m.WithdrawalAmountTotal.WithLabelValues("pending")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.ResponsesReapedTotal))
}

func TestObserveCallback(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCallback(CallbackForbidden)
	m.ObserveCallback(CallbackForbidden)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CallbacksTotal.WithLabelValues(CallbackForbidden)))
}
