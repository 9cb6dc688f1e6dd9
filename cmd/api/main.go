package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/account-service/internal/api"
	"github.com/example/account-service/internal/auth"
	"github.com/example/account-service/internal/config"
	"github.com/example/account-service/internal/db"
	"github.com/example/account-service/internal/logger"
	"github.com/example/account-service/internal/mailer"
	"github.com/example/account-service/internal/metrics"
	"github.com/example/account-service/internal/repository/postgres"
	"github.com/example/account-service/internal/services"
	"github.com/example/account-service/internal/worker"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	mail := &mailer.LogMailer{Log: log}

	accountSvc := services.NewAccountService(repos.Users, repos.Roles, repos.LinkedAccounts, repos.AuditLogs, tm)
	resetSvc := services.NewResetService(repos.Users, repos.AuditLogs, mail, wp, cfg.ResetTTL)
	linkedSvc := services.NewLinkedService(repos.LinkedAccounts)

	r := api.NewRouter(api.RouterDeps{
		Cfg:      cfg,
		TM:       tm,
		Users:    repos.Users,
		Accounts: accountSvc,
		Resets:   resetSvc,
		Linked:   linkedSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
