// Package remove реализует HTTP-обработчик удаления записи на тренировку.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/params"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Handler обрабатывает запросы на удаление записи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления записи.
type Service interface {
	Delete(ctx context.Context, trainingID, signupID string, actor *models.User) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить запись
// @Description Владелец или создатель удаляет свою запись, администратор любую. Записи завершенной тренировки не удаляются.
// @Tags Signups
// @Produce json
// @Param id path string true "ID тренировки"
// @Param signupId path string true "ID записи"
// @Success 200 {object} response.Response{data=models.SignupRef}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /trainings/{id}/signup/{signupId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup.remove"
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

	if err := h.service.Delete(r.Context(), trainingID, signupID, actor); err != nil {
		log.Info("delete rejected", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(models.SignupRef{ID: signupID, TrainingID: trainingID}))
}
