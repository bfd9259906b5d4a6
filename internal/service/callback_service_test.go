package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/testutil"
	"survey-payout-be/pkg/metrics"
	"survey-payout-be/pkg/signature"

	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCallbackService(env *testEnv, diagnostic bool) ICallbackService {
	return NewCallbackService(env.factory, env.responses, env.metrics, logger.NewNopLogger(), CallbackConfig{
		ThankYouURL:    "https://panel.example.com/thanks",
		BaseURL:        "https://api.example.com/",
		DiagnosticMode: diagnostic,
	})
}

func TestNormalizeOutcome(t *testing.T) {
	tests := map[string]entity.CompletionOutcome{
		"complete":       entity.OutcomeSuccess,
		"Completed":      entity.OutcomeSuccess,
		"success":        entity.OutcomeSuccess,
		"quota":          entity.OutcomeQuotaComplete,
		"QUOTA_FULL":     entity.OutcomeQuotaComplete,
		"quotafull":      entity.OutcomeQuotaComplete,
		"overquota":      entity.OutcomeQuotaComplete,
		"quota_complete": entity.OutcomeQuotaComplete,
		"disqualified":   entity.OutcomeDisqualified,
		"screenout":      entity.OutcomeDisqualified,
		"terminate":      entity.OutcomeDisqualified,
		" terminated ":   entity.OutcomeDisqualified,
	}
	for raw, want := range tests {
		got, ok := NormalizeOutcome(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := NormalizeOutcome("abandoned")
	assert.False(t, ok)
}

func TestHandleCallback_ValidToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newCallbackService(env, false)
	survey := testutil.SeedSurvey(t, env.db, func(s *model.Survey) { s.AutoApprove = true })
	userID := uuid.New()

	req := CallbackRequest{
		Outcome:  "complete",
		SurveyID: survey.Id.String(),
		UserID:   userID.String(),
		Token:    signature.Token(survey.CallbackSecret, survey.Id, "success"),
	}

	res, err := svc.HandleCallback(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeSuccess, res.Outcome)
	assert.False(t, res.Idempotent)

	redirect, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "panel.example.com", redirect.Host)
	assert.Equal(t, survey.Id.String(), redirect.Query().Get("survey_id"))
	assert.Equal(t, "success", redirect.Query().Get("status"))

	assert.Equal(t, "10.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	replay, err := svc.HandleCallback(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, replay.Idempotent)
	assert.Equal(t, "10.00", testutil.Balance(t, env.db, userID).WithdrawableBalance.StringFixed(2))

	assert.Equal(t, 2.0, promtest.ToFloat64(env.metrics.CallbacksTotal.WithLabelValues(metrics.CallbackAccepted)))
}

func TestHandleCallback_Forbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := newCallbackService(env, false)
	survey := testutil.SeedSurvey(t, env.db)
	userID := uuid.New()

	tests := []struct {
		name string
		req  CallbackRequest
	}{
		{"wrong token", CallbackRequest{Outcome: "complete", SurveyID: survey.Id.String(), UserID: userID.String(), Token: strings.Repeat("ab", 32)}},
		{"token for another outcome", CallbackRequest{Outcome: "complete", SurveyID: survey.Id.String(), UserID: userID.String(), Token: signature.Token(survey.CallbackSecret, survey.Id, "disqualified")}},
		{"unknown survey", CallbackRequest{Outcome: "complete", SurveyID: uuid.NewString(), UserID: userID.String(), Token: signature.Token(survey.CallbackSecret, survey.Id, "success")}},
		{"malformed survey", CallbackRequest{Outcome: "complete", SurveyID: "not-a-uuid", UserID: userID.String(), Token: "00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.HandleCallback(context.Background(), tt.req)
			assert.ErrorIs(t, err, entity.ErrInvalidToken)
			assert.Nil(t, res)
		})
	}

	assert.Nil(t, testutil.Balance(t, env.db, userID))
	assert.EqualValues(t, 0, countResponses(t, env.db))
	assert.Equal(t, 4.0, promtest.ToFloat64(env.metrics.CallbacksTotal.WithLabelValues(metrics.CallbackForbidden)))
}

func TestHandleCallback_DiagnosticMode(t *testing.T) {
	env := newTestEnv(t)
	svc := newCallbackService(env, true)
	survey := testutil.SeedSurvey(t, env.db)

	res, err := svc.HandleCallback(context.Background(), CallbackRequest{
		Outcome:  "screenout",
		SurveyID: survey.Id.String(),
		UserID:   uuid.NewString(),
		Token:    "deadbeef",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidToken)
	require.NotNil(t, res)
	require.NotNil(t, res.Diagnostic)
	assert.Equal(t, signature.Token(survey.CallbackSecret, survey.Id, "disqualified"), res.Diagnostic.Expected)
	assert.Equal(t, "deadbeef", res.Diagnostic.Provided)
}

func TestHandleCallback_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newCallbackService(env, false)
	survey := testutil.SeedSurvey(t, env.db)

	_, err := svc.HandleCallback(context.Background(), CallbackRequest{Outcome: "complete", SurveyID: survey.Id.String()})
	assert.ErrorIs(t, err, entity.ErrMissingCallback)

	_, err = svc.HandleCallback(context.Background(), CallbackRequest{
		Outcome:  "finished",
		SurveyID: survey.Id.String(),
		UserID:   uuid.NewString(),
		Token:    "00",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidOutcome)
}

func TestCallbackURLs_VerifyAgainstHandler(t *testing.T) {
	env := newTestEnv(t)
	svc := newCallbackService(env, false)
	survey := testutil.SeedSurvey(t, env.db)

	urls, err := svc.CallbackURLs(context.Background(), survey.Id)
	require.NoError(t, err)
	require.Len(t, urls.URLs, 3)
	require.Len(t, urls.Fallback, 3)

	link := urls.URLs[string(entity.OutcomeDisqualified)]
	assert.True(t, strings.HasPrefix(link, "https://api.example.com/survey-callback/disqualified?"))
	assert.Contains(t, link, "uid={uid}")

	userID := uuid.New()
	parsed, err := url.Parse(strings.Replace(link, "{uid}", userID.String(), 1))
	require.NoError(t, err)
	q := parsed.Query()

	res, err := svc.HandleCallback(context.Background(), CallbackRequest{
		Outcome:  "disqualified",
		SurveyID: q.Get("sid"),
		UserID:   q.Get("uid"),
		Token:    q.Get("token"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeDisqualified, res.Outcome)

	fallback, err := url.Parse(urls.Fallback[string(entity.OutcomeQuotaComplete)])
	require.NoError(t, err)
	assert.Equal(t, "quota", fallback.Query().Get("outcome"))

	_, err = svc.CallbackURLs(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entity.ErrSurveyNotFound)
}
