package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/contract"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/events"
	"survey-payout-be/pkg/ledger"
	"survey-payout-be/pkg/quota"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const resetCreditWarning = "response had been credited; the credit was not reversed and needs manual reconciliation"

type IResponseService interface {
	StartResponse(ctx context.Context, userId, surveyId uuid.UUID, provenance entity.Provenance) (*dto.StartResponseResponse, error)
	CompleteResponse(ctx context.Context, userId, surveyId uuid.UUID, outcome entity.CompletionOutcome, payload map[string]interface{}) (*dto.CompleteResponseResponse, error)
	ApproveResponse(ctx context.Context, responseId, adminId uuid.UUID, notes string) (*dto.ReviewResponseResponse, error)
	RejectResponse(ctx context.Context, responseId, adminId uuid.UUID, notes string) (*dto.ReviewResponseResponse, error)
	ResetResponse(ctx context.Context, responseId, adminId uuid.UUID) (*dto.ReviewResponseResponse, error)
	ListMine(ctx context.Context, userId uuid.UUID, query dto.ResponseListQuery) (*dto.ResponseListResponse, error)
	ListForAdmin(ctx context.Context, query dto.ResponseListQuery) (*dto.ResponseListResponse, error)
}

type responseService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *ledger.Ledger
	quota      *quota.Controller
	publisher  eventbus.Publisher
	logger     logger.ILogger
	now        func() time.Time
}

func NewResponseService(
	uowFactory unitofwork.RepositoryFactory,
	ledger *ledger.Ledger,
	quota *quota.Controller,
	publisher eventbus.Publisher,
	logger logger.ILogger,
) IResponseService {
	return &responseService{
		uowFactory: uowFactory,
		ledger:     ledger,
		quota:      quota,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *responseService) StartResponse(ctx context.Context, userId, surveyId uuid.UUID, provenance entity.Provenance) (*dto.StartResponseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId})
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, entity.ErrSurveyNotFound
	}
	if !survey.IsAvailable() {
		return nil, entity.ErrSurveyUnavailable
	}

	repo := uow.SurveyResponseRepository()
	response, err := repo.FindOne(ctx, specification.ByUserAndSurvey{UserID: userId, SurveyID: surveyId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	created := false
	if response == nil {
		fresh := &entity.SurveyResponse{
			Id:           uuid.New(),
			UserId:       userId,
			SurveyId:     surveyId,
			Status:       entity.ResponseStatusWaiting,
			StartTime:    now,
			WaitingSince: &now,
			Round:        1,
		}
		applyProvenance(fresh, provenance)
		response, created, err = claimResponse(ctx, repo, fresh)
		if err != nil {
			return nil, err
		}
	}
	reopened := !created

	switch {
	case created, response.Status == entity.ResponseStatusWaiting:
		// Already open; nothing to change.

	case response.IsCompleted():
		if !survey.AllowMultipleSubmissions {
			return nil, entity.ErrAlreadyCompleted
		}
		if response.HasApproval(entity.ApprovalStatusPending) {
			return nil, entity.ErrApprovalPending
		}
		clearCompletion(response)
		response.Round++
		response.Payload = nil
		reopen(response, now)
		applyProvenance(response, provenance)
		if err := repo.Update(ctx, response); err != nil {
			return nil, fmt.Errorf("reopen response: %w", err)
		}

	default:
		response.CompletionOutcome = nil
		reopen(response, now)
		applyProvenance(response, provenance)
		if err := repo.Update(ctx, response); err != nil {
			return nil, fmt.Errorf("reopen response: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleResponse, "Response started", map[string]interface{}{
		"responseId": response.Id.String(),
		"userId":     userId.String(),
		"surveyId":   surveyId.String(),
		"round":      response.Round,
		"reopened":   reopened,
	})

	return &dto.StartResponseResponse{
		ResponseId: response.Id,
		Status:     string(response.Status),
		Round:      response.Round,
		Reopened:   reopened,
	}, nil
}

func (s *responseService) CompleteResponse(ctx context.Context, userId, surveyId uuid.UUID, outcome entity.CompletionOutcome, payload map[string]interface{}) (*dto.CompleteResponseResponse, error) {
	if !outcome.IsReportable() {
		return nil, entity.ErrInvalidOutcome
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: surveyId})
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, entity.ErrSurveyNotFound
	}

	repo := uow.SurveyResponseRepository()
	response, err := repo.FindOne(ctx, specification.ByUserAndSurvey{UserID: userId, SurveyID: surveyId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	approval := approvalFor(survey, outcome)
	created := false
	if response == nil {
		fresh := &entity.SurveyResponse{
			Id:        uuid.New(),
			UserId:    userId,
			SurveyId:  surveyId,
			StartTime: now,
			Round:     1,
		}
		markCompleted(fresh, outcome, approval, now, payload)
		response, created, err = claimResponse(ctx, repo, fresh)
		if err != nil {
			return nil, err
		}
	}

	if !created && response.IsCompleted() {
		if !response.HasOutcome(outcome) {
			return nil, entity.ErrOutcomeConflict
		}
		s.logger.Debug(logger.ModuleResponse, "Repeated completion ignored", map[string]interface{}{
			"responseId": response.Id.String(),
			"outcome":    string(outcome),
		})
		return &dto.CompleteResponseResponse{
			ResponseId:     response.Id,
			Status:         string(response.Status),
			Outcome:        string(outcome),
			ApprovalStatus: string(*response.ApprovalStatus),
			Credited:       response.IsCredited() && survey.Reward().IsPositive(),
			Idempotent:     true,
		}, nil
	}

	if !created {
		markCompleted(response, outcome, approval, now, payload)
		if err := repo.Update(ctx, response); err != nil {
			return nil, fmt.Errorf("complete response: %w", err)
		}
	}

	reward := survey.Reward()
	credited := false
	if approval == entity.ApprovalStatusAutoApproved && outcome == entity.OutcomeSuccess && reward.IsPositive() {
		if _, err := s.ledger.Credit(ctx, uow, userId, reward, ledger.ResponseCreditRef(response.Id, response.Round)); err != nil {
			return nil, err
		}
		credited = true
	}

	var paused *entity.Survey
	if outcome == entity.OutcomeQuotaComplete {
		var opened bool
		paused, opened, err = s.quota.Pause(ctx, uow, surveyId, now)
		if err != nil {
			return nil, err
		}
		if !opened {
			paused = nil
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleResponse, "Response completed", map[string]interface{}{
		"responseId":     response.Id.String(),
		"userId":         userId.String(),
		"surveyId":       surveyId.String(),
		"outcome":        string(outcome),
		"approvalStatus": string(approval),
		"credited":       credited,
		"synthesized":    created,
	})

	creditedAmount := decimal.Zero
	if credited {
		creditedAmount = reward
	}
	s.publisher.Publish(ctx, events.ResponseCompleted{
		ResponseID:     response.Id,
		UserID:         userId,
		SurveyID:       surveyId,
		Outcome:        string(outcome),
		ApprovalStatus: string(approval),
		Amount:         creditedAmount,
		Credited:       credited,
		OccurredAt:     now,
	})

	if paused != nil {
		s.announcePause(ctx, paused)
	}

	return &dto.CompleteResponseResponse{
		ResponseId:     response.Id,
		Status:         string(response.Status),
		Outcome:        string(outcome),
		ApprovalStatus: string(approval),
		Credited:       credited,
	}, nil
}

// announcePause runs after the pause has committed. Failure only costs the
// notification.
func (s *responseService) announcePause(ctx context.Context, survey *entity.Survey) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	event, err := s.quota.Announce(ctx, uow, survey)
	if err != nil {
		s.logger.Error(logger.ModuleQuota, "Failed to build quota notification", map[string]interface{}{
			"surveyId": survey.Id.String(),
			"error":    err.Error(),
		})
		return
	}
	s.publisher.Publish(ctx, *event)
}

func (s *responseService) ApproveResponse(ctx context.Context, responseId, adminId uuid.UUID, notes string) (*dto.ReviewResponseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	response, survey, err := s.lockForReview(ctx, uow, responseId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	approved := entity.ApprovalStatusApproved
	response.ApprovalStatus = &approved
	response.ApprovedBy = &adminId
	response.ApprovalDate = &now
	response.AdminNotes = appendNote(response.AdminNotes, notes)
	if err := uow.SurveyResponseRepository().Update(ctx, response); err != nil {
		return nil, fmt.Errorf("approve response: %w", err)
	}

	reward := survey.Reward()
	credited := decimal.Zero
	if response.HasOutcome(entity.OutcomeSuccess) && reward.IsPositive() {
		if _, err := s.ledger.Credit(ctx, uow, response.UserId, reward, ledger.ResponseCreditRef(response.Id, response.Round)); err != nil {
			return nil, err
		}
		credited = reward
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleResponse, "Response approved", map[string]interface{}{
		"responseId": responseId.String(),
		"adminId":    adminId.String(),
		"credited":   credited.StringFixed(2),
	})

	s.publisher.Publish(ctx, events.ResponseApproved{
		ResponseID: response.Id,
		UserID:     response.UserId,
		SurveyID:   response.SurveyId,
		SurveyName: survey.Title,
		AdminID:    adminId,
		Amount:     credited,
		Notes:      strings.TrimSpace(notes),
		OccurredAt: now,
	})

	return reviewResult(response, credited, ""), nil
}

func (s *responseService) RejectResponse(ctx context.Context, responseId, adminId uuid.UUID, notes string) (*dto.ReviewResponseResponse, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, entity.ErrNotesRequired
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	response, survey, err := s.lockForReview(ctx, uow, responseId)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rejected := entity.ApprovalStatusRejected
	response.ApprovalStatus = &rejected
	response.ApprovedBy = &adminId
	response.ApprovalDate = &now
	response.AdminNotes = appendNote(response.AdminNotes, notes)
	if err := uow.SurveyResponseRepository().Update(ctx, response); err != nil {
		return nil, fmt.Errorf("reject response: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleResponse, "Response rejected", map[string]interface{}{
		"responseId": responseId.String(),
		"adminId":    adminId.String(),
	})

	s.publisher.Publish(ctx, events.ResponseRejected{
		ResponseID: response.Id,
		UserID:     response.UserId,
		SurveyID:   response.SurveyId,
		SurveyName: survey.Title,
		AdminID:    adminId,
		Notes:      notes,
		OccurredAt: now,
	})

	return reviewResult(response, decimal.Zero, ""), nil
}

// lockForReview loads a response that is awaiting approval, plus its survey.
func (s *responseService) lockForReview(ctx context.Context, uow unitofwork.UnitOfWork, responseId uuid.UUID) (*entity.SurveyResponse, *entity.Survey, error) {
	response, err := uow.SurveyResponseRepository().FindOne(ctx, specification.ByID{ID: responseId}, specification.ForUpdate{})
	if err != nil {
		return nil, nil, err
	}
	if response == nil {
		return nil, nil, entity.ErrResponseNotFound
	}
	if !response.HasApproval(entity.ApprovalStatusPending) {
		if response.HasApproval(entity.ApprovalStatusApproved) || response.HasApproval(entity.ApprovalStatusAutoApproved) {
			return nil, nil, entity.ErrAlreadyApproved
		}
		return nil, nil, entity.ErrNotPending
	}

	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: response.SurveyId})
	if err != nil {
		return nil, nil, err
	}
	if survey == nil {
		return nil, nil, entity.ErrSurveyNotFound
	}
	return response, survey, nil
}

func (s *responseService) ResetResponse(ctx context.Context, responseId, adminId uuid.UUID) (*dto.ReviewResponseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	response, err := uow.SurveyResponseRepository().FindOne(ctx, specification.ByID{ID: responseId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, entity.ErrResponseNotFound
	}
	if !response.IsCompleted() {
		return nil, entity.ErrNotCompleted
	}

	survey, err := uow.SurveyRepository().FindOne(ctx, specification.ByID{ID: response.SurveyId})
	if err != nil {
		return nil, err
	}
	wasCredited := response.IsCredited() && survey != nil && survey.Reward().IsPositive()

	now := s.now()
	clearCompletion(response)
	response.Status = entity.ResponseStatusNotComplete
	response.WaitingSince = nil
	response.Round++
	response.AdminNotes = appendNote(response.AdminNotes, fmt.Sprintf("[reset by %s at %s]", adminId, now.Format(time.RFC3339)))
	if err := uow.SurveyResponseRepository().Update(ctx, response); err != nil {
		return nil, fmt.Errorf("reset response: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	warning := ""
	details := map[string]interface{}{
		"responseId": responseId.String(),
		"userId":     response.UserId.String(),
		"adminId":    adminId.String(),
		"round":      response.Round,
	}
	if wasCredited {
		warning = resetCreditWarning
		details["amount"] = survey.Reward().StringFixed(2)
		s.logger.Warn(logger.ModuleResponse, "Credited response reset without reversal", details)
	} else {
		s.logger.Info(logger.ModuleResponse, "Response reset", details)
	}

	s.publisher.Publish(ctx, events.ResponseReset{
		ResponseID:  response.Id,
		UserID:      response.UserId,
		SurveyID:    response.SurveyId,
		AdminID:     adminId,
		WasCredited: wasCredited,
		OccurredAt:  now,
	})

	return reviewResult(response, decimal.Zero, warning), nil
}

func (s *responseService) ListMine(ctx context.Context, userId uuid.UUID, query dto.ResponseListQuery) (*dto.ResponseListResponse, error) {
	return s.list(ctx, query, specification.UserOwnedBy{UserID: userId})
}

func (s *responseService) ListForAdmin(ctx context.Context, query dto.ResponseListQuery) (*dto.ResponseListResponse, error) {
	return s.list(ctx, query)
}

func (s *responseService) list(ctx context.Context, query dto.ResponseListQuery, scope ...specification.Specification) (*dto.ResponseListResponse, error) {
	page, limit := pageBounds(query.Page, query.Limit)

	filters := append([]specification.Specification{}, scope...)
	if query.Status != "" {
		filters = append(filters, specification.ByStatus{Status: query.Status})
	}
	if query.ApprovalStatus != "" {
		filters = append(filters, specification.ByApprovalStatus{ApprovalStatus: query.ApprovalStatus})
	}
	if query.SurveyId != "" {
		surveyId, err := uuid.Parse(query.SurveyId)
		if err != nil {
			return nil, entity.ErrSurveyNotFound
		}
		filters = append(filters, specification.BySurveyID{SurveyID: surveyId})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SurveyResponseRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	responses, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ResponseListItem, 0, len(responses))
	for _, r := range responses {
		items = append(items, toResponseListItem(r))
	}
	return &dto.ResponseListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// approvalFor decides the review state of a fresh completion. Only paid
// successes on surveys without auto approval wait for an admin.
func approvalFor(survey *entity.Survey, outcome entity.CompletionOutcome) entity.ApprovalStatus {
	if survey.IsPaid && outcome == entity.OutcomeSuccess && !survey.AutoApprove {
		return entity.ApprovalStatusPending
	}
	return entity.ApprovalStatusAutoApproved
}

// claimResponse inserts fresh unless the pair already has a row, and returns
// the row this transaction now holds. created is false when another request
// got there first; the existing row is then returned locked.
func claimResponse(ctx context.Context, repo contract.SurveyResponseRepository, fresh *entity.SurveyResponse) (*entity.SurveyResponse, bool, error) {
	inserted, err := repo.CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, false, fmt.Errorf("create response: %w", err)
	}
	if inserted {
		return fresh, true, nil
	}
	existing, err := repo.FindOne(ctx, specification.ByUserAndSurvey{UserID: fresh.UserId, SurveyID: fresh.SurveyId}, specification.ForUpdate{})
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("response for user %s and survey %s vanished after insert conflict", fresh.UserId, fresh.SurveyId)
	}
	return existing, false, nil
}

func markCompleted(r *entity.SurveyResponse, outcome entity.CompletionOutcome, approval entity.ApprovalStatus, now time.Time, payload map[string]interface{}) {
	r.Status = entity.ResponseStatusCompleted
	r.CompletionOutcome = &outcome
	r.ApprovalStatus = &approval
	r.WaitingSince = nil
	r.CompletionTime = &now
	if payload != nil {
		r.Payload = payload
	}
}

func clearCompletion(r *entity.SurveyResponse) {
	r.CompletionOutcome = nil
	r.ApprovalStatus = nil
	r.ApprovedBy = nil
	r.ApprovalDate = nil
	r.CompletionTime = nil
}

func reopen(r *entity.SurveyResponse, now time.Time) {
	r.Status = entity.ResponseStatusWaiting
	r.StartTime = now
	r.WaitingSince = &now
}

func applyProvenance(r *entity.SurveyResponse, p entity.Provenance) {
	if p.Country != "" {
		r.Country = strings.ToUpper(p.Country)
	}
	if p.IpAddress != "" {
		r.IpAddress = p.IpAddress
	}
	if p.UserAgent != "" {
		r.UserAgent = p.UserAgent
	}
	if p.Referrer != "" {
		r.Referrer = p.Referrer
	}
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

func reviewResult(r *entity.SurveyResponse, credited decimal.Decimal, warning string) *dto.ReviewResponseResponse {
	res := &dto.ReviewResponseResponse{
		ResponseId:   r.Id,
		Status:       string(r.Status),
		ApprovedBy:   r.ApprovedBy,
		ApprovalDate: r.ApprovalDate,
		Credited:     credited,
		Round:        r.Round,
		Warning:      warning,
	}
	if r.ApprovalStatus != nil {
		res.ApprovalStatus = string(*r.ApprovalStatus)
	}
	return res
}

func toResponseListItem(r *entity.SurveyResponse) dto.ResponseListItem {
	item := dto.ResponseListItem{
		Id:             r.Id,
		UserId:         r.UserId,
		SurveyId:       r.SurveyId,
		Status:         string(r.Status),
		Round:          r.Round,
		StartTime:      r.StartTime,
		CompletionTime: r.CompletionTime,
		ApprovalDate:   r.ApprovalDate,
		AdminNotes:     r.AdminNotes,
		Country:        r.Country,
	}
	if r.CompletionOutcome != nil {
		item.CompletionOutcome = string(*r.CompletionOutcome)
	}
	if r.ApprovalStatus != nil {
		item.ApprovalStatus = string(*r.ApprovalStatus)
	}
	return item
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
