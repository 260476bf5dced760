package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"enroll/internal/audit"
	"enroll/internal/notification"
	"enroll/internal/platform/config"
	"enroll/internal/platform/httpserver"
	"enroll/internal/platform/logger"
	"enroll/internal/platform/metrics"
	platformredis "enroll/internal/platform/redis"
	reghandler "enroll/internal/registration/handler"
	regmetrics "enroll/internal/registration/metrics"
	"enroll/internal/registration/password"
	"enroll/internal/registration/service"
	"enroll/internal/registration/store"
	"enroll/internal/registration/store/idempotency"
	httptransport "enroll/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	users, closeDB, err := buildUserStore(cfg, log)
	if err != nil {
		log.Error("user store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer closeDB()

	replay, closeRedis, err := buildReplayStore(cfg, log)
	if err != nil {
		log.Error("replay store init failed", "error", err.Error())
		os.Exit(1)
	}
	defer closeRedis()

	auditor, closeAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		log.Error("audit init failed", "error", err.Error())
		os.Exit(1)
	}
	defer closeAudit()

	platformMetrics := metrics.New()
	registrationMetrics := regmetrics.New()

	svc := service.NewService(users, password.NewBcryptHasher(),
		service.WithReplayStore(replay, cfg.IdempotencyTTL),
		service.WithSender(notification.NewLogSender(log)),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(registrationMetrics),
		service.WithLogger(log),
	)

	handler := reghandler.New(svc, log, platformMetrics)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting enroll", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}

// buildUserStore selects Postgres when DATABASE_URL is set, else the
// in-memory store for local development.
func buildUserStore(cfg config.Server, log *slog.Logger) (service.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory user store")
		return store.NewInMemory(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPostgres(db), func() { db.Close() }, nil
}

func buildReplayStore(cfg config.Server, log *slog.Logger) (service.ReplayStore, func(), error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("using in-memory idempotency store")
		return idempotency.NewInMemory(), func() {}, nil
	}
	return idempotency.NewRedis(client.Client), func() { client.Close() }, nil
}

func buildAuditPublisher(cfg config.Server, log *slog.Logger) (service.AuditPublisher, func(), error) {
	if cfg.AuditBrokers == "" {
		log.Info("audit events staying in memory")
		return audit.NewPublisher(audit.NewInMemoryStore()), func() {}, nil
	}
	kafka, err := audit.NewKafkaStore(strings.Split(cfg.AuditBrokers, ","))
	if err != nil {
		return nil, nil, err
	}
	return audit.NewPublisher(kafka), kafka.Close, nil
}
