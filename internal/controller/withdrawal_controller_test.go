package controller

import (
	"net/http"
	"testing"

	"survey-payout-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t, false)
	userID := uuid.New()
	userBearer := token(t, userID, "user")
	adminBearer := token(t, uuid.New(), "admin")
	method := testutil.SeedPaymentMethod(t, h.db)
	testutil.SeedBalance(t, h.db, userID, "30.00")

	resp, body := h.do(t, http.MethodPost, "/api/withdrawals", userBearer, map[string]interface{}{
		"payment_method_id": method.Id,
		"amount":            "25.00",
		"payment_details":   map[string]string{"email": "me@example.com"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := data(t, body)
	assert.Equal(t, "pending", created["status"])
	assert.Regexp(t, `^WD-[0-9A-Z]{10}$`, created["code"])
	id := created["id"].(string)

	resp, body = h.do(t, http.MethodGet, "/api/me/balance", userBearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertDecimal(t, "5.00", data(t, body)["withdrawable_balance"])

	// Participants cannot process their own request.
	resp, _ = h.do(t, http.MethodPost, "/api/admin/withdrawals/"+id+"/approve", userBearer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/api/admin/withdrawals/"+id+"/approve", adminBearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "approved", data(t, body)["status"])

	resp, body = h.do(t, http.MethodPost, "/api/admin/withdrawals/"+id+"/complete", adminBearer, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "reference_required", body["error"])

	resp, body = h.do(t, http.MethodPost, "/api/admin/withdrawals/"+id+"/complete", adminBearer, map[string]string{
		"transaction_reference": "TX123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "completed", data(t, body)["status"])

	resp, body = h.do(t, http.MethodGet, "/api/me/withdrawals", userBearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, data(t, body)["total"])
}

func TestSubmitWithdrawalInsufficientBalance(t *testing.T) {
	h := newHarness(t, false)
	userID := uuid.New()
	method := testutil.SeedPaymentMethod(t, h.db)
	testutil.SeedBalance(t, h.db, userID, "3.00")

	resp, body := h.do(t, http.MethodPost, "/api/withdrawals", token(t, userID, "user"), map[string]interface{}{
		"payment_method_id": method.Id,
		"amount":            "10",
		"payment_details":   map[string]string{"email": "me@example.com"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "insufficient_balance", body["error"])
}

func TestCancelWithdrawalOverHTTP(t *testing.T) {
	h := newHarness(t, false)
	userID := uuid.New()
	bearer := token(t, userID, "user")
	method := testutil.SeedPaymentMethod(t, h.db)
	testutil.SeedBalance(t, h.db, userID, "10.00")

	_, body := h.do(t, http.MethodPost, "/api/withdrawals", bearer, map[string]interface{}{
		"payment_method_id": method.Id,
		"amount":            "10",
		"payment_details":   map[string]string{"email": "me@example.com"},
	})
	id := data(t, body)["id"].(string)

	resp, body := h.do(t, http.MethodPost, "/api/withdrawals/"+id+"/cancel", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "cancelled", data(t, body)["status"])

	resp, _ = h.do(t, http.MethodPost, "/api/withdrawals/"+id+"/cancel", bearer, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/payment-methods", bearer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}
