package me

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	args := m.Called(ctx, actor)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &models.User{ID: "u-1", Email: "driver@example.com", Role: models.RoleUser}

	t.Run("текущий пользователь", func(t *testing.T) {
		m := new(MockService)
		m.On("Me", mock.Anything, user).Return(user, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, user))
		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"driver@example.com"`)
		m.AssertExpectations(t)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		m := new(MockService)
		m.On("Me", mock.Anything, user).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, user))
		w := httptest.NewRecorder()
		New(logger, m).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `internal error`)
	})

	t.Run("без пользователя", func(t *testing.T) {
		w := httptest.NewRecorder()
		New(logger, new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
