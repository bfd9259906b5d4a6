package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/pkg/serverutils"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/service"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/ledger"
	"survey-payout-be/pkg/metrics"
	"survey-payout-be/pkg/quota"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type harness struct {
	app       *fiber.App
	db        *gorm.DB
	callbacks service.ICallbackService
}

func newHarness(t *testing.T, diagnostic bool) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.NewNopLogger()
	factory := unitofwork.NewRepositoryFactory(db)
	publisher := &testutil.RecordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	l := ledger.New(log)
	q := quota.NewController(log)

	responses := service.NewResponseService(factory, l, q, publisher, log)
	withdrawals, err := service.NewWithdrawalService(factory, l, publisher, log)
	require.NoError(t, err)
	surveys := service.NewSurveyService(factory, q, publisher, log)
	callbacks := service.NewCallbackService(factory, responses, m, log, service.CallbackConfig{
		ThankYouURL:    "https://panel.example.com/thanks",
		BaseURL:        "http://api.example.com",
		DiagnosticMode: diagnostic,
	})
	reaper := service.NewReaperService(factory, publisher, m, log, 0)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler})
	NewCallbackController(callbacks).RegisterRoutes(app)
	api := app.Group("/api")
	NewSurveyController(surveys, responses, testSecret).RegisterRoutes(api)
	NewWithdrawalController(withdrawals, testSecret).RegisterRoutes(api)
	NewAdminController(responses, withdrawals, surveys, callbacks, reaper, testSecret).RegisterRoutes(api)

	return &harness{app: app, db: db, callbacks: callbacks}
}

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := serverutils.SignToken(testSecret, userID, role)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, bearer string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

// assertDecimal compares a JSON-encoded decimal (a string) by value.
func assertDecimal(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected decimal string, got %T", got)
	require.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}
