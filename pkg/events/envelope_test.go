package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTypedEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	in := WithdrawalChanged{
		Type:         TypeWithdrawalCompleted,
		WithdrawalID: uuid.New(),
		UserID:       uuid.New(),
		Status:       "completed",
		Amount:       decimal.RequireFromString("10.00"),
		Fee:          decimal.RequireFromString("1.00"),
		NetAmount:    decimal.RequireFromString("9.00"),
		Reference:    "TX123",
		OccurredAt:   at,
	}

	raw, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)

	got, ok := out.(*WithdrawalChanged)
	require.True(t, ok)
	assert.Equal(t, TypeWithdrawalCompleted, got.EventType())
	assert.Equal(t, in.WithdrawalID, got.WithdrawalID)
	assert.True(t, in.NetAmount.Equal(got.NetAmount))
	assert.True(t, at.Equal(got.Timestamp()))
}

func TestDecodeUnknownTypeFallsBackToBaseEvent(t *testing.T) {
	raw, err := Encode(BaseEvent{Type: "SOMETHING_ELSE", Data: map[string]interface{}{"k": "v"}, OccurredAt: time.Now()})
	require.NoError(t, err)

	out, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "SOMETHING_ELSE", out.EventType())
	assert.Equal(t, "v", out.Payload()["k"])
}
