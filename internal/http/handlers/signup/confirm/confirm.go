// Package confirm реализует HTTP-обработчик подтверждения записи.
//
// Тело запроса {"status":"confirmed"} переводит запись из pending в confirmed,
// если ее владелец успел до истечения срока.
package confirm

import (
	"context"
	"encoding/json"
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

// Handler обрабатывает запросы на подтверждение записи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс подтверждения записи.
type Service interface {
	Confirm(ctx context.Context, trainingID, signupID string, actor *models.User) (*models.Signup, error)
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
// @Summary Подтвердить запись
// @Tags Signups
// @Accept json
// @Produce json
// @Param id path string true "ID тренировки"
// @Param signupId path string true "ID записи"
// @Param request body models.DummySignupStatus true "Новый статус"
// @Success 200 {object} response.Response{data=models.Signup}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "Чужая или просроченная запись"
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Запись уже подтверждена"
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /trainings/{id}/signup/{signupId} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup.confirm"
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
		response.BadRequest(w, r, "invalid training id")
		return
	}
	signupID, err := params.ID(r, "signupId")
	if err != nil {
		response.BadRequest(w, r, "invalid signup id")
		return
	}

	var req models.DummySignupStatus
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request", sl.Err(err))
		response.BadRequest(w, r, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Invalid(w, r, err)
		return
	}

	res, err := h.service.Confirm(r.Context(), trainingID, signupID, actor)
	if err != nil {
		log.Info("confirm rejected", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
