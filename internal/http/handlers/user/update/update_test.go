package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
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

func (m *MockService) Update(ctx context.Context, actor *models.User, id string, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, actor, id, patch)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	admin := &models.User{ID: "00000000-0000-0000-0000-000000000001", Role: models.RoleAdmin}
	const userID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	blocked := true

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "блокировка",
			id:   userID,
			body: `{"isBlocked":true}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, admin, userID, models.UserPatch{IsBlocked: &blocked}).
					Return(&models.User{ID: userID, IsBlocked: true}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"isBlocked":true`,
		},
		{
			name:           "неизвестная роль",
			id:             userID,
			body:           `{"role":"owner"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `must be one of [user admin]`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			body:           `{"isBlocked":true}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid user id`,
		},
		{
			name:           "битый JSON",
			id:             userID,
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "пустой патч",
			id:   userID,
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, admin, userID, models.UserPatch{}).
					Return(nil, fmt.Errorf("users.Update: %w: empty patch", models.ErrInvalidInput)).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `invalid input: empty patch`,
		},
		{
			name: "пользователь не найден",
			id:   userID,
			body: `{"isBlocked":true}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, admin, userID, mock.Anything).Return(nil, models.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockService)
			tt.setupMock(m)

			req := httptest.NewRequest(http.MethodPatch, "/api/users/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.User, admin)
			req = req.WithContext(ctx)
			w := httptest.NewRecorder()

			New(logger, m).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			m.AssertExpectations(t)
		})
	}
}
