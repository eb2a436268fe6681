// Package users содержит операции над учетными записями: чтение для аутентификации
// и изменение роли или блокировки администратором.
package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Repository хранилище пользователей.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
}

// Publisher рассылает события об изменениях.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Service операции над пользователями.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, log: log}
}

// Get возвращает пользователя по ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "users.Get"
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Me возвращает актуальную запись текущего пользователя.
func (s *Service) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	return s.Get(ctx, actor.ID)
}

// List возвращает всех пользователей. Доступно только администратору.
func (s *Service) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	const op = "users.List"
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	list, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Update меняет роль или блокировку пользователя. Доступно только администратору,
// причем администратор не может заблокировать себя или снять с себя роль.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, patch models.UserPatch) (*models.User, error) {
	const op = "users.Update"
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if patch.Role == nil && patch.IsBlocked == nil {
		return nil, fmt.Errorf("%s: %w: empty patch", op, models.ErrInvalidInput)
	}
	if actor.ID == id {
		if (patch.IsBlocked != nil && *patch.IsBlocked) || (patch.Role != nil && *patch.Role != models.RoleAdmin) {
			return nil, fmt.Errorf("%s: %w: cannot demote or block yourself", op, models.ErrForbidden)
		}
	}

	u, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user updated", sl.User(id), slog.String("by", actor.ID))
	if err := s.publisher.Publish(ctx, models.EventUserUpdated, u); err != nil {
		s.log.Error("failed to publish event", sl.Event(models.EventUserUpdated), sl.Err(err))
	}
	return u, nil
}
