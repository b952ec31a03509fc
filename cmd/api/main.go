package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/notifhub/notification-backend-go/internal/config"
	appHTTP "github.com/notifhub/notification-backend-go/internal/handler/http"
	"github.com/notifhub/notification-backend-go/internal/pkg/cache"
	"github.com/notifhub/notification-backend-go/internal/pkg/database"
	"github.com/notifhub/notification-backend-go/internal/pkg/queue"
	"github.com/notifhub/notification-backend-go/internal/repository/postgresql"
	notificationService "github.com/notifhub/notification-backend-go/internal/service/notification"
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

	redisCache, err := cache.NewRedis(context.Background(), cfg.Redis.URL)
	if err != nil {
		log.Error("error connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

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
	notificationSvc := notificationService.NewNotificationService(notificationRepo, redisCache, broker, log)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)

	router := appHTTP.NewRouter(notificationHandler, cfg.App.Env)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
