package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, name, role, is_blocked FROM users WHERE id = $1`
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsBlocked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ListUsers возвращает всех пользователей.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, email, name, role, is_blocked FROM users ORDER BY name, email`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsBlocked); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser меняет роль и/или блокировку пользователя и возвращает обновлённую запись.
func (s *Storage) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.UpdateUser"

	query := `UPDATE users
			  SET role = COALESCE($2, role), is_blocked = COALESCE($3, is_blocked)
			  WHERE id = $1
			  RETURNING id, email, name, role, is_blocked`
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, id, patch.Role, patch.IsBlocked).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsBlocked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// UpsertUser сохраняет учётную запись, пришедшую от сервиса идентификации.
func (s *Storage) UpsertUser(ctx context.Context, u models.User) error {
	const op = "storage.UpsertUser"

	query := `INSERT INTO users (id, email, name, role, is_blocked)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`
	if _, err := s.DB.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.Role, u.IsBlocked); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
