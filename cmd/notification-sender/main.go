// Package main содержит точку входа для сервиса рассылки напоминаний.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/gokart-trainings/internal/app/sender"
	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/logger"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting notification-sender", slog.String("env", cfg.Env), slog.String("provider", cfg.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize sender app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("sender stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("notification-sender stopped gracefully")
}
