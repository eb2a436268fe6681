package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

const trainingColumns = `id, title, description, start_time, end_time, open_at,
			      max_participants, created_by, created_at`

func scanTraining(row interface{ Scan(dest ...any) error }) (*models.Training, error) {
	var (
		t       models.Training
		endTime sql.NullTime
		openAt  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.StartTime, &endTime, &openAt,
		&t.MaxParticipants, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t.EndTime = &endTime.Time
	}
	if openAt.Valid {
		t.OpenAt = &openAt.Time
	}
	return &t, nil
}

// CreateTraining сохраняет новую тренировку.
func (s *Storage) CreateTraining(ctx context.Context, t *models.Training) error {
	const op = "storage.CreateTraining"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trainings (id, title, description, start_time, end_time, open_at,
			      max_participants, created_by, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query, t.ID, t.Title, t.Description, t.StartTime,
		t.EndTime, t.OpenAt, t.MaxParticipants, t.CreatedBy, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetTraining возвращает тренировку вместе с записями.
func (s *Storage) GetTraining(ctx context.Context, id string) (*models.TrainingWithSignups, error) {
	const op = "storage.GetTraining"

	query := `SELECT ` + trainingColumns + ` FROM trainings WHERE id = $1`
	t, err := scanTraining(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	signups, err := listSignupViews(ctx, s.DB, `WHERE s.training_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TrainingWithSignups{Training: *t, Signups: signups[id]}, nil
}

// ListTrainings возвращает все тренировки по возрастанию времени начала с вложенными записями.
func (s *Storage) ListTrainings(ctx context.Context) ([]models.TrainingWithSignups, error) {
	const op = "storage.ListTrainings"

	query := `SELECT ` + trainingColumns + ` FROM trainings ORDER BY start_time, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.TrainingWithSignups, 0)
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, models.TrainingWithSignups{Training: *t})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	signups, err := listSignupViews(ctx, s.DB, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range result {
		result[i].Signups = signups[result[i].ID]
		if result[i].Signups == nil {
			result[i].Signups = []models.SignupView{}
		}
	}
	return result, nil
}

// LockTraining читает тренировку и блокирует строку до конца транзакции.
func (t *pgTx) LockTraining(ctx context.Context, id string) (*models.Training, error) {
	const op = "storage.LockTraining"

	query := `SELECT ` + trainingColumns + ` FROM trainings WHERE id = $1 FOR UPDATE`
	training, err := scanTraining(t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return training, nil
}

// DeleteTraining удаляет тренировку.
func (t *pgTx) DeleteTraining(ctx context.Context, id string) error {
	const op = "storage.DeleteTraining"

	res, err := t.tx.ExecContext(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
