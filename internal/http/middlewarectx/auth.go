// Package middlewarectx содержит HTTP middleware аутентификации, проверки прав и ограничения частоты запросов.
//
// JWTMiddleware берет access-токен из заголовка Authorization или cookie access_token,
// проверяет его подпись и перечитывает пользователя из хранилища, чтобы роль и блокировка
// всегда были актуальными. Найденный пользователь кладется в контекст запроса.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gokart-trainings/internal/http/response"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/jwt"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ текущего пользователя в контексте.
const User Key = "user"

// TokenCookie имя cookie с access-токеном.
const TokenCookie = "access_token"

// TokenParser проверяет access-токен.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// UserGetter читает пользователя по ID.
type UserGetter interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// JWTMiddleware возвращает middleware аутентификации.
// Без токена или с невалидным токеном отвечает 401, заблокированному пользователю 403.
func JWTMiddleware(parser TokenParser, users UserGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				log.Debug("missing access token")
				unauthorized(w, r, "missing or invalid authorization header")
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				unauthorized(w, r, "invalid or expired token")
				return
			}

			if _, err := uuid.Parse(claims.UserID()); err != nil {
				log.Info("token subject is not a user id", slog.String("sub", claims.UserID()))
				unauthorized(w, r, "invalid token subject")
				return
			}

			user, err := users.Get(r.Context(), claims.UserID())
			if errors.Is(err, models.ErrNotFound) {
				log.Info("token subject is unknown", sl.User(claims.UserID()))
				unauthorized(w, r, "unknown user")
				return
			}
			if err != nil {
				log.Error("failed to load user", sl.Err(err))
				response.ServiceError(w, r, err)
				return
			}
			if user.IsBlocked {
				log.Info("blocked user rejected", sl.User(user.ID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("account is blocked"))
				return
			}

			ctx := context.WithValue(r.Context(), User, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly пропускает только администраторов.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w, r, "unauthorized")
			return
		}
		if !user.IsAdmin() {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext возвращает пользователя, положенного JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if c, err := r.Cookie(TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(msg))
}
