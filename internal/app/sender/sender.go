// Package sender содержит процесс рассылки писем-напоминаний о неподтвержденных записях.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/ses"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/smtp"
	"github.com/magabrotheeeer/gokart-trainings/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/gokart-trainings/internal/services/sender"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage/repository"
)

// Провайдеры почты.
const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

// App представляет приложение рассылки.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *repository.Storage
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// NewMailer выбирает транспорт писем по mail.provider. Неизвестный провайдер заменяется на noop.
func NewMailer(cfg config.Mail, logger *slog.Logger) senderservice.Mailer {
	switch cfg.Provider {
	case ProviderSMTP:
		return smtp.NewMailer(smtp.NewTransport(cfg.SMTP, logger), cfg.FromAddress, logger)
	case ProviderSES:
		return ses.New(cfg.SES, cfg.FromAddress, cfg.FromName, logger)
	case ProviderNoop:
		return senderservice.NopMailer{Log: logger}
	default:
		logger.Warn("unknown mail provider, using noop", slog.String("provider", cfg.Provider))
		return senderservice.NopMailer{Log: logger}
	}
}

// New создает приложение рассылки.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return nil, fmt.Errorf("notification sender requires storage_driver %q", config.StorageDriverPostgres)
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("rabbitmq.url is required")
	}
	db, err := repository.New(cfg.StorageConnectionString, cfg.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	conn, err := rabbitmq.Dial(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		_ = db.DB.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.Open(conn, rabbitmq.SignupTopology(cfg.Exchange))
	if err != nil {
		_ = conn.Close()
		_ = db.DB.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	senderService := senderservice.NewSenderService(db, logger, NewMailer(cfg.Mail, logger))

	return &App{
		conn:          conn,
		ch:            ch,
		db:            db,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("sender service started", slog.String("queue", rabbitmq.SignupCreatedQueue))
	err := rabbitmq.Consume(ctx, a.ch, rabbitmq.SignupCreatedQueue, rabbitmq.DefaultPrefetch, a.logger, a.senderService.SendSignupReminder)
	if err != nil {
		a.logger.Error("failed to consume signup.created", sl.Err(err))
	}
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return err
}
