// Package reminder собирает приложение движка напоминаний о продлении подписок.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/expense-tracker/internal/config"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/rabbitmq"
	reminderservice "github.com/magabrotheeeer/expense-tracker/internal/services/reminder"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
)

const scanInterval = 24 * time.Hour

// App представляет приложение движка напоминаний.
type App struct {
	reminderService *reminderservice.ReminderService
	conn            *amqp.Connection
	ch              *amqp.Channel
	db              *repository.Storage
	logger          *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения движка напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	dispatcher := reminderservice.NewQueueDispatcher(ch)
	reminderService := reminderservice.NewReminderService(db, dispatcher, logger, cfg.EmailFrom)

	return &App{
		reminderService: reminderService,
		conn:            conn,
		ch:              ch,
		db:              db,
		logger:          logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run выполняет проход движка сразу после старта и далее раз в сутки,
// пока контекст не будет отменен.
func (a *App) Run(ctx context.Context) error {
	a.runOnce(ctx)

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.runOnce(ctx)
		case <-ctx.Done():
			a.logger.Info("shutting down reminder engine")

			if err := a.ch.Close(); err != nil {
				a.logger.Error("failed to close channel", slog.Any("err", err))
			}
			if err := a.conn.Close(); err != nil {
				a.logger.Error("failed to close connection", slog.Any("err", err))
			}
			if err := a.db.DB.Close(); err != nil {
				a.logger.Error("failed to close storage", slog.Any("err", err))
			}
			return nil
		}
	}
}

func (a *App) runOnce(ctx context.Context) {
	report, err := a.reminderService.Run(ctx, time.Now())
	if err != nil {
		a.logger.Error("reminder run failed", slog.Any("err", err))
		return
	}
	a.logger.Info("reminder run finished",
		slog.Int("far_notifications", report.FarNotifications),
		slog.Int("near_notifications", report.NearNotifications),
		slog.Int("advanced", report.Advanced),
		slog.Int("skipped", report.Skipped),
		slog.Int("dispatch_errors", report.DispatchErrors),
		slog.Int("advance_errors", report.AdvanceErrors),
	)
}
