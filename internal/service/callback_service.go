package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/metrics"
	"survey-payout-be/pkg/signature"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// External panels use their own words for outcomes.
var outcomeAliases = map[string]entity.CompletionOutcome{
	"complete":       entity.OutcomeSuccess,
	"completed":      entity.OutcomeSuccess,
	"success":        entity.OutcomeSuccess,
	"quota":          entity.OutcomeQuotaComplete,
	"quota_full":     entity.OutcomeQuotaComplete,
	"quotafull":      entity.OutcomeQuotaComplete,
	"overquota":      entity.OutcomeQuotaComplete,
	"quota_complete": entity.OutcomeQuotaComplete,
	"disqualified":   entity.OutcomeDisqualified,
	"screenout":      entity.OutcomeDisqualified,
	"terminate":      entity.OutcomeDisqualified,
	"terminated":     entity.OutcomeDisqualified,
}

// Path slugs handed out to panels, one per outcome.
var callbackSlugs = []struct {
	Slug    string
	Outcome entity.CompletionOutcome
}{
	{"complete", entity.OutcomeSuccess},
	{"quota", entity.OutcomeQuotaComplete},
	{"disqualified", entity.OutcomeDisqualified},
}

const uidPlaceholder = "{uid}"

// NormalizeOutcome maps an external outcome word to a completion outcome.
func NormalizeOutcome(raw string) (entity.CompletionOutcome, bool) {
	outcome, ok := outcomeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return outcome, ok
}

type CallbackRequest struct {
	Outcome  string
	SurveyID string
	UserID   string
	Token    string
	RemoteIP string
}

type CallbackResult struct {
	RedirectURL string
	Outcome     entity.CompletionOutcome
	Idempotent  bool
	// Diagnostic is set on a token mismatch when diagnostic mode is on.
	Diagnostic *CallbackDiagnostic
}

type CallbackDiagnostic struct {
	Expected string `json:"expected_token"`
	Provided string `json:"provided_token"`
	Payload  string `json:"signed_payload"`
}

type CallbackConfig struct {
	ThankYouURL    string
	BaseURL        string
	DiagnosticMode bool
	SecretCacheTTL time.Duration
}

type ICallbackService interface {
	HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error)
	CallbackURLs(ctx context.Context, surveyId uuid.UUID) (*dto.CallbackURLsResponse, error)
}

type callbackService struct {
	uowFactory unitofwork.RepositoryFactory
	responses  IResponseService
	metrics    *metrics.Metrics
	logger     logger.ILogger
	cfg        CallbackConfig
	secrets    *cache.Cache
}

func NewCallbackService(
	uowFactory unitofwork.RepositoryFactory,
	responses IResponseService,
	metrics *metrics.Metrics,
	logger logger.ILogger,
	cfg CallbackConfig,
) ICallbackService {
	ttl := cfg.SecretCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &callbackService{
		uowFactory: uowFactory,
		responses:  responses,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		secrets:    cache.New(ttl, 2*ttl),
	}
}

func (s *callbackService) HandleCallback(ctx context.Context, req CallbackRequest) (*CallbackResult, error) {
	if req.Outcome == "" || req.SurveyID == "" || req.UserID == "" || req.Token == "" {
		s.metrics.ObserveCallback(metrics.CallbackInvalid)
		return nil, entity.ErrMissingCallback
	}

	outcome, ok := NormalizeOutcome(req.Outcome)
	if !ok {
		s.metrics.ObserveCallback(metrics.CallbackInvalid)
		return nil, entity.ErrInvalidOutcome
	}

	userId, err := uuid.Parse(req.UserID)
	if err != nil {
		s.metrics.ObserveCallback(metrics.CallbackInvalid)
		return nil, entity.ErrMissingCallback.WithMessage("invalid user id")
	}

	// An unknown survey looks exactly like a bad token to the caller.
	surveyId, err := uuid.Parse(req.SurveyID)
	if err != nil {
		return s.forbidden(req, "malformed survey id", nil)
	}
	secret, err := s.secretFor(ctx, surveyId)
	if err != nil {
		s.metrics.ObserveCallback(metrics.CallbackFailed)
		return nil, err
	}
	if secret == "" {
		return s.forbidden(req, "unknown survey", nil)
	}

	if !signature.Verify(secret, surveyId, string(outcome), req.Token) {
		var diag *CallbackDiagnostic
		if s.cfg.DiagnosticMode {
			diag = &CallbackDiagnostic{
				Expected: signature.Token(secret, surveyId, string(outcome)),
				Provided: req.Token,
				Payload:  surveyId.String() + ":" + string(outcome),
			}
		}
		return s.forbidden(req, "token mismatch", diag)
	}

	result, err := s.responses.CompleteResponse(ctx, userId, surveyId, outcome, map[string]interface{}{
		"source":           "callback",
		"external_outcome": req.Outcome,
	})
	if err != nil {
		s.metrics.ObserveCallback(metrics.CallbackFailed)
		s.logger.Warn(logger.ModuleCallback, "Callback completion failed", map[string]interface{}{
			"surveyId": surveyId.String(),
			"userId":   userId.String(),
			"outcome":  string(outcome),
			"error":    err.Error(),
		})
		return nil, err
	}

	s.metrics.ObserveCallback(metrics.CallbackAccepted)
	s.logger.Info(logger.ModuleCallback, "Callback accepted", map[string]interface{}{
		"surveyId":   surveyId.String(),
		"userId":     userId.String(),
		"outcome":    string(outcome),
		"idempotent": result.Idempotent,
		"remoteIp":   req.RemoteIP,
	})

	return &CallbackResult{
		RedirectURL: s.thankYouURL(surveyId, outcome),
		Outcome:     outcome,
		Idempotent:  result.Idempotent,
	}, nil
}

func (s *callbackService) forbidden(req CallbackRequest, reason string, diag *CallbackDiagnostic) (*CallbackResult, error) {
	s.metrics.ObserveCallback(metrics.CallbackForbidden)
	s.logger.Warn(logger.ModuleCallback, "Callback rejected", map[string]interface{}{
		"surveyId": req.SurveyID,
		"userId":   req.UserID,
		"outcome":  req.Outcome,
		"reason":   reason,
		"remoteIp": req.RemoteIP,
	})
	if diag != nil {
		return &CallbackResult{Diagnostic: diag}, entity.ErrInvalidToken
	}
	return nil, entity.ErrInvalidToken
}

// secretFor returns the survey's callback secret, or "" when the survey does
// not exist.
func (s *callbackService) secretFor(ctx context.Context, surveyId uuid.UUID) (string, error) {
	key := surveyId.String()
	if cached, ok := s.secrets.Get(key); ok {
		return cached.(string), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId})
	if err != nil {
		return "", err
	}
	if survey == nil {
		return "", nil
	}
	s.secrets.SetDefault(key, survey.CallbackSecret)
	return survey.CallbackSecret, nil
}

func (s *callbackService) thankYouURL(surveyId uuid.UUID, outcome entity.CompletionOutcome) string {
	q := url.Values{}
	q.Set("survey_id", surveyId.String())
	q.Set("status", string(outcome))

	base := s.cfg.ThankYouURL
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func (s *callbackService) CallbackURLs(ctx context.Context, surveyId uuid.UUID) (*dto.CallbackURLsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId})
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, entity.ErrSurveyNotFound
	}
	if survey.CallbackSecret == "" {
		return nil, errors.New("survey has no callback secret")
	}

	base := strings.TrimRight(s.cfg.BaseURL, "/") + "/survey-callback"
	res := &dto.CallbackURLsResponse{
		SurveyId: surveyId,
		URLs:     make(map[string]string, len(callbackSlugs)),
		Fallback: make(map[string]string, len(callbackSlugs)),
	}
	for _, c := range callbackSlugs {
		token := signature.Token(survey.CallbackSecret, surveyId, string(c.Outcome))
		// The uid placeholder is substituted by the panel, so it stays unescaped.
		tail := "sid=" + surveyId.String() + "&uid=" + uidPlaceholder + "&token=" + token
		res.URLs[string(c.Outcome)] = base + "/" + c.Slug + "?" + tail
		res.Fallback[string(c.Outcome)] = base + "?outcome=" + c.Slug + "&" + tail
	}
	return res, nil
}
