package bootstrap

import (
	"context"
	"errors"

	"survey-payout-be/internal/background"
	"survey-payout-be/internal/config"
	"survey-payout-be/internal/controller"
	"survey-payout-be/internal/handler"
	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/internal/pkg/mailer"
	"survey-payout-be/internal/repository/unitofwork"
	"survey-payout-be/internal/service"
	"survey-payout-be/internal/websocket"
	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/kafka"
	"survey-payout-be/pkg/ledger"
	"survey-payout-be/pkg/metrics"
	pktNats "survey-payout-be/pkg/nats"
	"survey-payout-be/pkg/quota"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger
	DB     *gorm.DB

	// Controllers
	SurveyController     controller.ISurveyController
	WithdrawalController controller.IWithdrawalController
	AdminController      controller.IAdminController
	CallbackController   controller.ICallbackController

	// Background
	ConsumerService service.IConsumerService
	ReaperScheduler *background.ReaperScheduler
	ReaperService   service.IReaperService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	bus    *eventbus.Bus
	broker service.Broker
	rdb    *redis.Client
}

// NewContainer wires every component. reg receives the Prometheus
// collectors; pass prometheus.DefaultRegisterer outside tests.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger, reg prometheus.Registerer) (*Container, error) {
	uowFactory := unitofwork.NewRepositoryFactory(db)
	m := metrics.New(reg)
	bus := eventbus.New(sysLogger)

	l := ledger.New(sysLogger)
	q := quota.NewController(sysLogger)

	responseService := service.NewResponseService(uowFactory, l, q, bus, sysLogger)
	withdrawalService, err := service.NewWithdrawalService(uowFactory, l, bus, sysLogger)
	if err != nil {
		return nil, err
	}
	surveyService := service.NewSurveyService(uowFactory, q, bus, sysLogger)
	callbackService := service.NewCallbackService(uowFactory, responseService, m, sysLogger, service.CallbackConfig{
		ThankYouURL:    cfg.Callback.ThankYouURL,
		BaseURL:        cfg.App.BaseURL,
		DiagnosticMode: cfg.Callback.DiagnosticMode,
		SecretCacheTTL: cfg.Callback.SecretCacheTTL,
	})
	reaperService := service.NewReaperService(uowFactory, bus, m, sysLogger, cfg.Reaper.Threshold())

	// Notifications
	rdb := newRedis(cfg.App.RedisURL, sysLogger)
	wsHub := websocket.NewHub(rdb, "", sysLogger)
	notifService := service.NewNotificationService(uowFactory, wsHub, newMailer(cfg.SMTP, sysLogger), sysLogger)
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, cfg.Auth.JwtSecret, sysLogger)

	subscribers := []service.Subscriber{
		{Name: "metrics", Handle: m.Handle},
		{Name: "notifier", Handle: notifService.HandleEvent},
	}
	broker := newBroker(cfg.Broker, sysLogger)
	if broker != nil {
		subscribers = append(subscribers, service.BrokerSubscriber(broker))
	}

	return &Container{
		Logger: sysLogger,
		DB:     db,

		SurveyController:     controller.NewSurveyController(surveyService, responseService, cfg.Auth.JwtSecret),
		WithdrawalController: controller.NewWithdrawalController(withdrawalService, cfg.Auth.JwtSecret),
		AdminController: controller.NewAdminController(
			responseService,
			withdrawalService,
			surveyService,
			callbackService,
			reaperService,
			cfg.Auth.JwtSecret,
		),
		CallbackController: controller.NewCallbackController(callbackService),

		ConsumerService: service.NewConsumerService(bus, subscribers...),
		ReaperScheduler: background.NewReaperScheduler(reaperService, cfg.Reaper.Interval, sysLogger),
		ReaperService:   reaperService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		bus:    bus,
		broker: broker,
		rdb:    rdb,
	}, nil
}

// Start attaches the event subscribers and launches the hub and the reaper.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	go c.WebSocketHub.Run(ctx)
	go c.ReaperScheduler.Start(ctx)
	return nil
}

func (c *Container) Close() error {
	var errs []error
	if err := c.bus.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.broker != nil {
		if err := c.broker.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newRedis(url string, log logger.ILogger) *redis.Client {
	if url == "" {
		log.Info(logger.ModuleHub, "REDIS_URL not set, websocket fan-out is local only", nil)
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(logger.ModuleHub, "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn(logger.ModuleHub, "Redis unreachable, websocket fan-out is local only", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newMailer(cfg config.SMTPConfig, log logger.ILogger) mailer.IEmailService {
	if cfg.Host == "" {
		log.Info(logger.ModuleNotifier, "SMTP_HOST not set, e-mail notifications disabled", nil)
		return mailer.NewNoopEmailService()
	}
	return mailer.NewEmailService(cfg.Host, cfg.Port, cfg.Email, cfg.Password, cfg.Email, cfg.SenderName)
}

func newBroker(cfg config.BrokerConfig, log logger.ILogger) service.Broker {
	switch cfg.Kind {
	case "nats":
		pub, err := pktNats.NewPublisher(cfg.NatsURL)
		if err != nil {
			log.Warn(logger.ModuleEventBus, "NATS unavailable, events stay in-process", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return pub
	case "kafka":
		return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil
	}
}
