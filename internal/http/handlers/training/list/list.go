// Package list реализует HTTP-обработчик получения списка тренировок вместе с записями.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Handler обрабатывает запросы на получение списка тренировок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения списка тренировок.
type Service interface {
	List(ctx context.Context) ([]models.TrainingWithSignups, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тренировок
// @Description Возвращает все тренировки по возрастанию времени начала вместе с записями участников.
// @Tags Trainings
// @Produce json
// @Success 200 {object} response.Response{data=[]models.TrainingWithSignups}
// @Failure 500 {object} response.ErrorResponse
// @Router /trainings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.training.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list trainings", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}

	log.Debug("trainings listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(res))
}
