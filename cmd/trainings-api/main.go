// Package main GoKart Trainings API
//
// @title           GoKart Trainings API
// @version         1.0
// @description     Запись на тренировки картодрома с лимитом участников и подтверждением записи.

// @host      localhost:4000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	trainingsapi "github.com/magabrotheeeer/gokart-trainings/internal/app/trainings-api"
	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/logger"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting trainings-api", slog.String("env", cfg.Env))
	log.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := trainingsapi.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("trainings-api stopped gracefully")
}
