// Package read реализует HTTP-обработчик чтения одной записи на тренировку.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/params"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Handler обрабатывает запросы на чтение записи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения записи.
type Service interface {
	Get(ctx context.Context, trainingID, signupID string) (*models.Signup, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить запись
// @Tags Signups
// @Produce json
// @Param id path string true "ID тренировки"
// @Param signupId path string true "ID записи"
// @Success 200 {object} response.Response{data=models.Signup}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /trainings/{id}/signup/{signupId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	res, err := h.service.Get(r.Context(), trainingID, signupID)
	if err != nil {
		log.Info("failed to read signup", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
