package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"survey-payout-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callbackPath turns a generated callback URL into a request path for uid.
func callbackPath(t *testing.T, raw string, uid uuid.UUID) string {
	t.Helper()
	u, err := url.Parse(strings.Replace(raw, "{uid}", uid.String(), 1))
	require.NoError(t, err)
	return u.RequestURI()
}

func TestCallbackRedirectsOnValidToken(t *testing.T) {
	h := newHarness(t, false)
	survey := testutil.SeedSurvey(t, h.db)
	userID := uuid.New()

	urls, err := h.callbacks.CallbackURLs(context.Background(), survey.Id)
	require.NoError(t, err)

	for _, raw := range []string{urls.URLs["success"], urls.Fallback["success"]} {
		req := httptest.NewRequest(http.MethodGet, callbackPath(t, raw, userID), nil)
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "panel.example.com", loc.Host)
		assert.Equal(t, "success", loc.Query().Get("status"))
		assert.Equal(t, survey.Id.String(), loc.Query().Get("survey_id"))
	}
}

func TestCallbackForbiddenIsOpaque(t *testing.T) {
	h := newHarness(t, false)
	survey := testutil.SeedSurvey(t, h.db)

	path := "/survey-callback/complete?sid=" + survey.Id.String() + "&uid=" + uuid.NewString() + "&token=deadbeef"
	resp, err := h.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.NotContains(t, resp.Header.Get("Content-Type"), "json")
}

func TestCallbackDiagnosticMode(t *testing.T) {
	h := newHarness(t, true)
	survey := testutil.SeedSurvey(t, h.db)

	path := "/survey-callback/complete?sid=" + survey.Id.String() + "&uid=" + uuid.NewString() + "&token=deadbeef"
	resp, body := h.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "deadbeef", body["provided_token"])
	assert.NotEmpty(t, body["expected_token"])
}

func TestCallbackMissingParameters(t *testing.T) {
	h := newHarness(t, false)

	resp, body := h.do(t, http.MethodGet, "/survey-callback/complete?sid="+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_parameters", body["error"])

	resp, body = h.do(t, http.MethodGet, "/survey-callback/sideways?sid="+uuid.NewString()+"&uid="+uuid.NewString()+"&token=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_outcome", body["error"])
}
