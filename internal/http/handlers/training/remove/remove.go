// Package remove реализует HTTP-обработчик удаления тренировки вместе с записями.
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

// Handler обрабатывает запросы на удаление тренировки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления тренировки.
type Service interface {
	Delete(ctx context.Context, actor *models.User, id string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить тренировку
// @Description Удаляет тренировку и все записи на нее. Доступно только администратору.
// @Tags Trainings
// @Produce json
// @Param id path string true "ID тренировки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Security BearerAuth
// @Router /trainings/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.training.remove"
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

	id, err := params.ID(r, "id")
	if err != nil {
		log.Info("invalid training id", sl.Err(err))
		response.BadRequest(w, r, "invalid training id")
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		log.Info("failed to delete training", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}

	log.Info("training deleted", sl.Training(id))
	render.JSON(w, r, response.StatusOKWithData(models.TrainingDeletedEvent{TrainingID: id}))
}
