package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/entity"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/events"
	"survey-payout-be/pkg/fee"
	"survey-payout-be/pkg/ledger"

	"github.com/google/uuid"
	nanoid "github.com/jaevor/go-nanoid"
)

const withdrawalCodeAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type IWithdrawalService interface {
	GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error)
	ListPaymentMethods(ctx context.Context) ([]dto.PaymentMethodResponse, error)
	SubmitWithdrawal(ctx context.Context, userId uuid.UUID, req *dto.SubmitWithdrawalRequest) (*dto.WithdrawalResponse, error)
	CancelWithdrawal(ctx context.Context, userId, requestId uuid.UUID) (*dto.WithdrawalResponse, error)
	ApproveWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, notes string) (*dto.WithdrawalResponse, error)
	MarkWithdrawalProcessing(ctx context.Context, requestId, adminId uuid.UUID) (*dto.WithdrawalResponse, error)
	RejectWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, reason string) (*dto.WithdrawalResponse, error)
	CompleteWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, transactionRef, notes string) (*dto.WithdrawalResponse, error)
	ListMine(ctx context.Context, userId uuid.UUID, query dto.WithdrawalListQuery) (*dto.WithdrawalListResponse, error)
	ListAll(ctx context.Context, query dto.WithdrawalListQuery) (*dto.WithdrawalListResponse, error)
}

type withdrawalService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *ledger.Ledger
	publisher  eventbus.Publisher
	logger     logger.ILogger
	newCode    func() string
	now        func() time.Time
}

func NewWithdrawalService(
	uowFactory unitofwork.RepositoryFactory,
	ledger *ledger.Ledger,
	publisher eventbus.Publisher,
	logger logger.ILogger,
) (IWithdrawalService, error) {
	codeGenerator, err := nanoid.CustomASCII(withdrawalCodeAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("withdrawal code generator: %w", err)
	}
	return &withdrawalService{
		uowFactory: uowFactory,
		ledger:     ledger,
		publisher:  publisher,
		logger:     logger,
		newCode:    func() string { return "WD-" + codeGenerator() },
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *withdrawalService) GetBalance(ctx context.Context, userId uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	balance, err := s.ledger.Balance(ctx, uow, userId)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		WithdrawableBalance: balance.WithdrawableBalance,
		LifetimeEarnings:    balance.LifetimeEarnings,
		LifetimePaidOut:     balance.LifetimePaidOut,
	}, nil
}

func (s *withdrawalService) ListPaymentMethods(ctx context.Context) ([]dto.PaymentMethodResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	methods, err := uow.PaymentMethodRepository().FindAll(ctx,
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "name"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		fields := m.RequiredFields
		if fields == nil {
			fields = []string{}
		}
		res = append(res, dto.PaymentMethodResponse{
			Id:             m.Id,
			Name:           m.Name,
			MinWithdrawal:  m.MinWithdrawal,
			MaxWithdrawal:  m.MaxWithdrawal,
			FeeType:        string(m.FeeType),
			FeeValue:       m.FeeValue,
			RequiredFields: fields,
		})
	}
	return res, nil
}

func (s *withdrawalService) SubmitWithdrawal(ctx context.Context, userId uuid.UUID, req *dto.SubmitWithdrawalRequest) (*dto.WithdrawalResponse, error) {
	amount := req.Amount
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, entity.ErrInvalidAmount
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	method, err := uow.PaymentMethodRepository().FindOne(ctx, specification.ByID{ID: req.PaymentMethodId})
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, entity.ErrPaymentMethodNotFound
	}
	if !method.IsActive {
		return nil, entity.ErrMethodInactive
	}
	if amount.LessThan(method.MinWithdrawal) {
		return nil, entity.ErrBelowMinimum.WithMessage("minimum withdrawal is %s", method.MinWithdrawal.StringFixed(2))
	}
	if method.HasMaximum() && amount.GreaterThan(method.MaxWithdrawal) {
		return nil, entity.ErrAboveMaximum.WithMessage("maximum withdrawal is %s", method.MaxWithdrawal.StringFixed(2))
	}

	details, err := paymentDetailsFor(method, req.PaymentDetails)
	if err != nil {
		return nil, err
	}

	breakdown, err := fee.Compute(method.FeeType, method.FeeValue, amount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	request := &entity.WithdrawalRequest{
		Id:              uuid.New(),
		Code:            s.newCode(),
		UserId:          userId,
		PaymentMethodId: method.Id,
		Amount:          breakdown.Amount,
		ProcessingFee:   breakdown.Fee,
		NetAmount:       breakdown.Net,
		PaymentDetails:  details,
		Status:          entity.WithdrawalStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := s.ledger.Debit(ctx, uow, userId, breakdown.Amount, ledger.WithdrawalDebitRef(request.Id)); err != nil {
		return nil, err
	}
	if err := uow.WithdrawalRepository().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	request.PaymentMethodName = method.Name
	s.logger.Info(logger.ModuleWithdrawal, "Withdrawal submitted", map[string]interface{}{
		"withdrawalId": request.Id.String(),
		"code":         request.Code,
		"userId":       userId.String(),
		"amount":       breakdown.Amount.StringFixed(2),
		"fee":          breakdown.Fee.StringFixed(2),
		"method":       method.Name,
	})
	s.publish(ctx, events.TypeWithdrawalSubmitted, request, nil, "")

	return toWithdrawalResponse(request), nil
}

// paymentDetailsFor checks every field the method requires and returns a
// trimmed copy of the submitted details.
func paymentDetailsFor(method *entity.PaymentMethod, submitted map[string]string) (map[string]string, error) {
	details := make(map[string]string, len(submitted))
	for k, v := range submitted {
		if v = strings.TrimSpace(v); v != "" {
			details[k] = v
		}
	}
	for _, field := range method.RequiredFields {
		if details[field] == "" {
			return nil, entity.ErrMissingPaymentDetail.WithMessage("missing payment detail: %s", field)
		}
	}
	return details, nil
}

func (s *withdrawalService) CancelWithdrawal(ctx context.Context, userId, requestId uuid.UUID) (*dto.WithdrawalResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRepository().FindOne(ctx,
		specification.ByID{ID: requestId},
		specification.UserOwnedBy{UserID: userId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	if request == nil || request.Status != entity.WithdrawalStatusPending {
		return nil, entity.ErrNotCancellable
	}

	if _, err := s.ledger.Refund(ctx, uow, userId, request.Amount, ledger.WithdrawalRefundRef(request.Id)); err != nil {
		return nil, err
	}

	request.Status = entity.WithdrawalStatusCancelled
	if err := uow.WithdrawalRepository().UpdateStatus(ctx, request); err != nil {
		return nil, fmt.Errorf("cancel withdrawal: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleWithdrawal, "Withdrawal cancelled", map[string]interface{}{
		"withdrawalId": requestId.String(),
		"userId":       userId.String(),
		"refunded":     request.Amount.StringFixed(2),
	})
	s.publish(ctx, events.TypeWithdrawalCancelled, request, &userId, "")

	return toWithdrawalResponse(request), nil
}

func (s *withdrawalService) ApproveWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, notes string) (*dto.WithdrawalResponse, error) {
	return s.transition(ctx, requestId, adminId, events.TypeWithdrawalApproved,
		func(_ context.Context, _ unitofwork.UnitOfWork, r *entity.WithdrawalRequest) error {
			if r.Status != entity.WithdrawalStatusPending {
				return entity.ErrInvalidTransition
			}
			r.Status = entity.WithdrawalStatusApproved
			r.AdminNotes = appendNote(r.AdminNotes, notes)
			return nil
		})
}

func (s *withdrawalService) MarkWithdrawalProcessing(ctx context.Context, requestId, adminId uuid.UUID) (*dto.WithdrawalResponse, error) {
	return s.transition(ctx, requestId, adminId, events.TypeWithdrawalProcessing,
		func(_ context.Context, _ unitofwork.UnitOfWork, r *entity.WithdrawalRequest) error {
			if r.Status != entity.WithdrawalStatusApproved {
				return entity.ErrInvalidTransition
			}
			r.Status = entity.WithdrawalStatusProcessing
			return nil
		})
}

func (s *withdrawalService) RejectWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, reason string) (*dto.WithdrawalResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, entity.ErrReasonRequired
	}
	return s.transition(ctx, requestId, adminId, events.TypeWithdrawalRejected,
		func(ctx context.Context, uow unitofwork.UnitOfWork, r *entity.WithdrawalRequest) error {
			if r.Status != entity.WithdrawalStatusPending {
				return entity.ErrInvalidTransition
			}
			if _, err := s.ledger.Refund(ctx, uow, r.UserId, r.Amount, ledger.WithdrawalRefundRef(r.Id)); err != nil {
				return err
			}
			r.Status = entity.WithdrawalStatusRejected
			r.AdminNotes = appendNote(r.AdminNotes, reason)
			return nil
		}, reason)
}

func (s *withdrawalService) CompleteWithdrawal(ctx context.Context, requestId, adminId uuid.UUID, transactionRef, notes string) (*dto.WithdrawalResponse, error) {
	transactionRef = strings.TrimSpace(transactionRef)
	if transactionRef == "" {
		return nil, entity.ErrReferenceRequired
	}
	return s.transition(ctx, requestId, adminId, events.TypeWithdrawalCompleted,
		func(ctx context.Context, uow unitofwork.UnitOfWork, r *entity.WithdrawalRequest) error {
			if r.Status != entity.WithdrawalStatusApproved && r.Status != entity.WithdrawalStatusProcessing {
				return entity.ErrInvalidTransition
			}
			if _, err := s.ledger.RecordPayout(ctx, uow, r.UserId, r.NetAmount, ledger.WithdrawalPayoutRef(r.Id)); err != nil {
				return err
			}
			r.Status = entity.WithdrawalStatusCompleted
			r.TransactionReference = transactionRef
			r.AdminNotes = appendNote(r.AdminNotes, notes)
			return nil
		})
}

type withdrawalMutation func(ctx context.Context, uow unitofwork.UnitOfWork, r *entity.WithdrawalRequest) error

// transition runs one admin step on a locked request and stamps the actor.
func (s *withdrawalService) transition(ctx context.Context, requestId, adminId uuid.UUID, eventType string, mutate withdrawalMutation, reason ...string) (*dto.WithdrawalResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	request, err := uow.WithdrawalRepository().FindOne(ctx, specification.ByID{ID: requestId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, entity.ErrWithdrawalNotFound
	}

	from := request.Status
	if err := mutate(ctx, uow, request); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			s.logger.Warn(logger.ModuleWithdrawal, "Withdrawal transition refused", map[string]interface{}{
				"withdrawalId": requestId.String(),
				"status":       string(from),
				"action":       eventType,
			})
		}
		return nil, err
	}

	now := s.now()
	request.ProcessedBy = &adminId
	request.ProcessedAt = &now
	if err := uow.WithdrawalRepository().UpdateStatus(ctx, request); err != nil {
		return nil, fmt.Errorf("update withdrawal: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(logger.ModuleWithdrawal, "Withdrawal status changed", map[string]interface{}{
		"withdrawalId": requestId.String(),
		"from":         string(from),
		"to":           string(request.Status),
		"adminId":      adminId.String(),
		"reference":    request.TransactionReference,
	})

	var why string
	if len(reason) > 0 {
		why = reason[0]
	}
	s.publish(ctx, eventType, request, &adminId, why)

	return toWithdrawalResponse(request), nil
}

func (s *withdrawalService) ListMine(ctx context.Context, userId uuid.UUID, query dto.WithdrawalListQuery) (*dto.WithdrawalListResponse, error) {
	return s.list(ctx, query, specification.UserOwnedBy{UserID: userId})
}

func (s *withdrawalService) ListAll(ctx context.Context, query dto.WithdrawalListQuery) (*dto.WithdrawalListResponse, error) {
	return s.list(ctx, query)
}

func (s *withdrawalService) list(ctx context.Context, query dto.WithdrawalListQuery, scope ...specification.Specification) (*dto.WithdrawalListResponse, error) {
	page, limit := pageBounds(query.Page, query.Limit)

	filters := append([]specification.Specification{}, scope...)
	if query.Status != "" {
		filters = append(filters, specification.ByStatus{Status: query.Status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.WithdrawalRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	requests, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WithdrawalResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, *toWithdrawalResponse(r))
	}
	return &dto.WithdrawalListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *withdrawalService) publish(ctx context.Context, eventType string, r *entity.WithdrawalRequest, actor *uuid.UUID, reason string) {
	s.publisher.Publish(ctx, events.WithdrawalChanged{
		Type:         eventType,
		WithdrawalID: r.Id,
		Code:         r.Code,
		UserID:       r.UserId,
		Status:       string(r.Status),
		Amount:       r.Amount,
		Fee:          r.ProcessingFee,
		NetAmount:    r.NetAmount,
		Method:       r.PaymentMethodName,
		ActorID:      actor,
		Reason:       reason,
		Reference:    r.TransactionReference,
		OccurredAt:   s.now(),
	})
}

func toWithdrawalResponse(r *entity.WithdrawalRequest) *dto.WithdrawalResponse {
	return &dto.WithdrawalResponse{
		Id:                   r.Id,
		Code:                 r.Code,
		UserId:               r.UserId,
		PaymentMethodId:      r.PaymentMethodId,
		PaymentMethodName:    r.PaymentMethodName,
		Amount:               r.Amount,
		ProcessingFee:        r.ProcessingFee,
		NetAmount:            r.NetAmount,
		PaymentDetails:       r.PaymentDetails,
		Status:               string(r.Status),
		ProcessedBy:          r.ProcessedBy,
		ProcessedAt:          r.ProcessedAt,
		TransactionReference: r.TransactionReference,
		AdminNotes:           r.AdminNotes,
		CreatedAt:            r.CreatedAt,
	}
}
