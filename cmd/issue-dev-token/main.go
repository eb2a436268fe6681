// Package main выпускает access-токен для локальной разработки.
//
// Пользователями владеет внешний сервис идентификации. Утилита подписывает токен тем же
// секретом и при флаге -upsert создает или обновляет пользователя в PostgreSQL.
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/issue-dev-token -id 00000000-0000-0000-0000-000000000001
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/jwt"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/logger"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage/repository"
)

func main() {
	var (
		id     = flag.String("id", "", "user id (uuid), generated when empty")
		email  = flag.String("email", "driver@gokart.local", "user email")
		name   = flag.String("name", "", "display name")
		role   = flag.String("role", models.RoleUser, "role: user or admin")
		upsert = flag.Bool("upsert", false, "create or update the user in postgres")
	)
	flag.Parse()

	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if *role != models.RoleUser && *role != models.RoleAdmin {
		log.Error("invalid role", slog.String("role", *role))
		os.Exit(2)
	}
	if *id == "" {
		*id = uuid.NewString()
	} else if _, err := uuid.Parse(*id); err != nil {
		log.Error("invalid user id", sl.Err(err))
		os.Exit(2)
	}

	if *upsert {
		if cfg.StorageDriver != config.StorageDriverPostgres {
			log.Error("-upsert requires storage_driver postgres")
			os.Exit(2)
		}
		db, err := repository.New(cfg.StorageConnectionString, cfg.LockTimeout)
		if err != nil {
			log.Error("failed to connect storage", sl.Err(err))
			os.Exit(1)
		}

		u := models.User{ID: *id, Email: *email, Name: *name, Role: *role}
		err = db.UpsertUser(context.Background(), u)
		_ = db.DB.Close()
		if err != nil {
			log.Error("failed to upsert user", sl.Err(err))
			os.Exit(1)
		}
		log.Info("user upserted", slog.String("user_id", *id), slog.String("role", *role))
	}

	token, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, jwt.WithIssuer(cfg.JWTIssuer)).GenerateToken(*id, *email)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		os.Exit(1)
	}
	fmt.Println(token)
}
