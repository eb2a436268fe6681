package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, trainingID, signupID string, actor *models.User) error {
	return m.Called(ctx, trainingID, signupID, actor).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &models.User{ID: "u-1", Role: models.RoleUser}
	const (
		trainingID = "5f0c3a52-8d1e-4e53-9b3c-1b2f4c7d9e10"
		signupID   = "9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d"
	)

	tests := []struct {
		name           string
		withUser       bool
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{name: "удаление", withUser: true, expectedStatus: http.StatusOK, expectedBody: `"signupId":"` + signupID + `"`},
		{name: "без пользователя", expectedStatus: http.StatusUnauthorized},
		{name: "чужая запись", withUser: true, err: models.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "нет записи", withUser: true, err: models.ErrNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.withUser {
				mockService.On("Delete", mock.Anything, trainingID, signupID, user).Return(tt.err).Once()
			}
			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", trainingID)
			rctx.URLParams.Add("signupId", signupID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.User, user)
			}
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
