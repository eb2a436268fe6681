// Package create реализует HTTP-обработчик записи на тренировку.
//
// Пустое тело или пустой guestName записывают самого пользователя,
// непустой guestName записывает гостя от его имени.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/params"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Handler управляет HTTP-запросами на создание записи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс движка записи.
type Service interface {
	Create(ctx context.Context, trainingID string, actor *models.User, guestName string) (*models.Signup, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Записаться на тренировку
// @Description Создает запись со статусом pending, которую нужно подтвердить до expiresAt.
// @Tags Signups
// @Accept json
// @Produce json
// @Param id path string true "ID тренировки"
// @Param request body models.DummySignup false "Имя гостя"
// @Success 201 {object} response.Response{data=models.Signup}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Запись еще не открыта"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 409 {object} response.ErrorResponse "Нет мест или пользователь уже записан"
// @Failure 503 {object} response.ErrorResponse "Конфликт, повторите запрос"
// @Security BearerAuth
// @Router /trainings/{id}/signup [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.ServiceError(w, r, models.ErrUnauthenticated)
		return
	}

	trainingID, err := params.ID(r, "id")
	if err != nil {
		log.Info("invalid training id", sl.Err(err))
		response.BadRequest(w, r, "invalid training id")
		return
	}

	var req models.DummySignup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.Create(r.Context(), trainingID, actor, req.GuestName)
	if err != nil {
		log.Info("signup rejected", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
