// Package mine реализует HTTP-обработчик списка записей текущего пользователя.
package mine

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Handler обрабатывает запросы на список своих записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения записей пользователя.
type Service interface {
	ListMine(ctx context.Context, actor *models.User) ([]models.MySignup, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мои записи
// @Description Записи пользователя и записанных им гостей.
// @Tags Signups
// @Produce json
// @Success 200 {object} response.Response{data=[]models.MySignup}
// @Failure 401 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /trainings/signups/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.signup.mine"
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

	res, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		log.Error("failed to list signups", sl.Err(err))
		response.ServiceError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
