package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/notifhub/notification-backend-go/internal/config"
	"github.com/notifhub/notification-backend-go/internal/pkg/classifier"
	"github.com/notifhub/notification-backend-go/internal/pkg/cron"
	"github.com/notifhub/notification-backend-go/internal/pkg/database"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
	"github.com/notifhub/notification-backend-go/internal/repository/postgresql"
	"github.com/notifhub/notification-backend-go/internal/worker/enrichment"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("error loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Error("error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	broker, err := queue.NewAMQP(queue.AMQPSettings{
		URI:          cfg.AMQP.URI,
		ExchangeName: cfg.AMQP.ExchangeName,
		QueueName:    cfg.AMQP.QueueName,
		RoutingKey:   cfg.AMQP.RoutingKey,
		Prefetch:     cfg.AMQP.Prefetch,
	}, log)
	if err != nil {
		log.Error("error connecting to the message broker", "error", err)
		os.Exit(1)
	}
	defer broker.Close()

	notificationRepo := postgresql.NewNotificationRepository(db)
	worker := enrichment.NewWorker(notificationRepo, classifier.NewMock(), cfg.Worker.ClassifyTimeout, log)

	// The sweep requeues records stranded in processing by a worker crash.
	sweeper := enrichment.NewSweeper(notificationRepo, broker, cfg.Worker.SweepAge, log)
	scheduler := cron.NewScheduler(log)
	scheduler.AddJob("requeue-stuck-notifications", cfg.Worker.SweepInterval, sweeper.Sweep)
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("enrichment worker starting", "queue", cfg.AMQP.QueueName)
	if err := broker.Consume(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	log.Info("enrichment worker stopped")
}
