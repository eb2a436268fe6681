// Package read реализует HTTP-обработчик получения одной тренировки по ID.
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

// Handler обрабатывает запросы на получение тренировки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения тренировки.
type Service interface {
	Get(ctx context.Context, id string) (*models.TrainingWithSignups, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить тренировку
// @Tags Trainings
// @Produce json
// @Param id path string true "ID тренировки"
// @Success 200 {object} response.Response{data=models.TrainingWithSignups}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Router /trainings/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.training.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := params.ID(r, "id")
	if err != nil {
		log.Info("invalid training id", sl.Err(err))
		response.BadRequest(w, r, "invalid training id")
		return
	}

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Info("failed to read training", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
