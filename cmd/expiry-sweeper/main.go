// Package main содержит точку входа для процесса очистки просроченных записей.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/gokart-trainings/internal/app/sweeper"
	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/logger"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting expiry-sweeper", slog.String("env", cfg.Env), slog.Duration("interval", cfg.Sweeper.Interval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sweeper.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize sweeper app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Error("sweeper stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("expiry-sweeper stopped gracefully")
}
