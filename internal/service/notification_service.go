package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"survey-payout-be/internal/dto"
	"survey-payout-be/internal/model"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/pkg/mailer"
	"survey-payout-be/internal/repository/specification"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// NotificationService turns domain events into inbox entries, websocket
// pushes and e-mails. Delivery failures are logged and never retried.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	delivery   NotificationDelivery
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, delivery NotificationDelivery, mailer mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		delivery:   delivery,
		mailer:     mailer,
		logger:     log,
	}
}

// HandleEvent is registered on the event bus.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	switch ev := event.(type) {
	case *events.ResponseApproved:
		msg := fmt.Sprintf("Your response to %q was approved.", ev.SurveyName)
		if ev.Amount.IsPositive() {
			msg = fmt.Sprintf("Your response to %q was approved and %s was added to your balance.", ev.SurveyName, ev.Amount.StringFixed(2))
		}
		s.notify(ctx, ev.UserID, event.EventType(), "response", ev.ResponseID, "Response approved", msg, event.Payload())

	case *events.ResponseRejected:
		msg := fmt.Sprintf("Your response to %q was not approved. Reason: %s", ev.SurveyName, ev.Notes)
		s.notify(ctx, ev.UserID, event.EventType(), "response", ev.ResponseID, "Response rejected", msg, event.Payload())

	case *events.SurveyAutoPaused:
		if ev.ManagerID == nil {
			s.logger.Warn(logger.ModuleNotifier, "Quota notification skipped, survey has no manager", map[string]interface{}{
				"surveyId": ev.SurveyID.String(),
			})
			return nil
		}
		msg := fmt.Sprintf("Survey %q reached its quota and was paused. Participants: %d, complete: %d, quota full: %d, disqualified: %d.",
			ev.SurveyName, ev.Participants, ev.SuccessCount, ev.QuotaCount, ev.DisqualifiedCount)
		s.notify(ctx, *ev.ManagerID, event.EventType(), "survey", ev.SurveyID, "Survey quota reached", msg, event.Payload())

	case *events.WithdrawalChanged:
		title, msg := withdrawalMessage(ev)
		if title == "" {
			return nil
		}
		s.notify(ctx, ev.UserID, event.EventType(), "withdrawal", ev.WithdrawalID, title, msg, event.Payload())
	}
	return nil
}

func withdrawalMessage(ev *events.WithdrawalChanged) (string, string) {
	switch ev.Type {
	case events.TypeWithdrawalApproved:
		return "Withdrawal approved", fmt.Sprintf("Your withdrawal %s of %s was approved.", ev.Code, ev.Amount.StringFixed(2))
	case events.TypeWithdrawalRejected:
		return "Withdrawal rejected", fmt.Sprintf("Your withdrawal %s was rejected and %s was returned to your balance. Reason: %s", ev.Code, ev.Amount.StringFixed(2), ev.Reason)
	case events.TypeWithdrawalCompleted:
		return "Withdrawal paid", fmt.Sprintf("Your withdrawal %s was paid: %s sent (reference %s).", ev.Code, ev.NetAmount.StringFixed(2), ev.Reference)
	}
	return "", ""
}

func (s *NotificationService) notify(ctx context.Context, userID uuid.UUID, typeCode, entityType string, entityID uuid.UUID, title, message string, payload map[string]interface{}) {
	meta, _ := json.Marshal(payload)
	notif := model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   typeCode,
		EntityType: entityType,
		EntityID:   &entityID,
		Title:      title,
		Message:    message,
		Metadata:   datatypes.JSON(meta),
		CreatedAt:  time.Now().UTC(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().CreateNotification(ctx, &notif); err != nil {
		s.logger.Error(logger.ModuleNotifier, "Failed to store notification", map[string]interface{}{
			"userId": userID.String(),
			"type":   typeCode,
			"error":  err.Error(),
		})
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	profile, err := uow.UserProfileRepository().FindOne(ctx, specification.ByUserID{UserID: userID})
	if err != nil {
		s.logger.Error(logger.ModuleNotifier, "Failed to look up contact", map[string]interface{}{
			"userId": userID.String(),
			"error":  err.Error(),
		})
		return
	}
	if profile == nil || profile.Email == "" {
		s.logger.Debug(logger.ModuleNotifier, "No contact email, e-mail skipped", map[string]interface{}{"userId": userID.String()})
		return
	}
	if err := s.mailer.SendNotification(profile.Email, title, message); err != nil {
		s.logger.Error(logger.ModuleNotifier, "Failed to send notification e-mail", map[string]interface{}{
			"userId": userID.String(),
			"type":   typeCode,
			"error":  err.Error(),
		})
		return
	}

	s.logger.Info(logger.ModuleNotifier, "Notification delivered", map[string]interface{}{
		"userId": userID.String(),
		"type":   typeCode,
	})
}

// GetNotifications fetches a page of the user's inbox.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).NotificationRepository()
	notifications, total, err := repo.GetNotificationsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		item := dto.NotificationResponse{
			Id:         n.ID,
			TypeCode:   n.TypeCode,
			Title:      n.Title,
			Message:    n.Message,
			EntityType: n.EntityType,
			EntityId:   n.EntityID,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		}
		if len(n.Metadata) > 0 {
			_ = json.Unmarshal(n.Metadata, &item.Metadata)
		}
		items = append(items, item)
	}

	return &dto.NotificationListResponse{
		Items:  items,
		Total:  total,
		Unread: unread,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// MarkAsRead marks one of the user's notifications as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.uowFactory.NewUnitOfWork(ctx).NotificationRepository().MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all user's notifications as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.uowFactory.NewUnitOfWork(ctx).NotificationRepository().MarkAllAsRead(ctx, userID)
}
