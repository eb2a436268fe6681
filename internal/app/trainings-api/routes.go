// Package trainingsapi собирает HTTP API записи на тренировки.
package trainingsapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-документации.
	_ "github.com/magabrotheeeer/gokart-trainings/docs"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/events/stream"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/health"
	signupconfirm "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/signup/confirm"
	signupcreate "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/signup/create"
	signupmine "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/signup/mine"
	signupread "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/signup/read"
	signupremove "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/signup/remove"
	trainingcreate "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/training/create"
	traininglist "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/training/list"
	trainingread "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/training/read"
	trainingremove "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/training/remove"
	userlist "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/user/list"
	userme "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/user/me"
	userupdate "github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/reservation"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/training"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/users"
)

// Deps зависимости маршрутов.
type Deps struct {
	Trainings      *training.Service
	Signups        *reservation.Engine
	Users          *users.Service
	Tokens         middlewarectx.TokenParser
	Hub            *notifier.Hub
	Checks         map[string]health.Check
	RateLimitRPS   float64
	RateLimitBurst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/trainings", traininglist.New(logger, d.Trainings).ServeHTTP)
		r.Get("/trainings/{id}", trainingread.New(logger, d.Trainings).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Tokens, d.Users, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.RateLimitRPS, d.RateLimitBurst))

			r.Get("/auth/me", userme.New(logger, d.Users).ServeHTTP)

			r.Get("/trainings/signups/me", signupmine.New(logger, d.Signups).ServeHTTP)
			r.Post("/trainings/{id}/signup", signupcreate.New(logger, d.Signups).ServeHTTP)
			r.Get("/trainings/{id}/signup/{signupId}", signupread.New(logger, d.Signups).ServeHTTP)
			r.Patch("/trainings/{id}/signup/{signupId}", signupconfirm.New(logger, d.Signups).ServeHTTP)
			r.Delete("/trainings/{id}/signup/{signupId}", signupremove.New(logger, d.Signups).ServeHTTP)

			// Только администратор
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly)
				r.Post("/trainings", trainingcreate.New(logger, d.Trainings).ServeHTTP)
				r.Delete("/trainings/{id}", trainingremove.New(logger, d.Trainings).ServeHTTP)
				r.Get("/users", userlist.New(logger, d.Users).ServeHTTP)
				r.Patch("/users/{id}", userupdate.New(logger, d.Users).ServeHTTP)
			})
		})
	})

	r.Get("/ws", stream.New(logger, d.Hub).ServeHTTP)
	r.Get("/health", health.New(logger, d.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
