package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

const signupColumns = `s.id, s.training_id, s.user_id, s.guest_name, s.created_by_id,
			      s.status, s.expires_at, s.signed_at`

const activeSignupPredicate = `(s.status = 'confirmed' OR (s.status = 'pending' AND s.expires_at > $2))`

func scanSignup(row interface{ Scan(dest ...any) error }, extra ...any) (*models.Signup, error) {
	var (
		s         models.Signup
		userID    sql.NullString
		guestName sql.NullString
		status    string
	)
	dest := append([]any{&s.ID, &s.TrainingID, &userID, &guestName, &s.CreatedByID,
		&status, &s.ExpiresAt, &s.SignedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Status = models.SignupStatus(status)
	if userID.Valid {
		s.UserID = &userID.String
	}
	if guestName.Valid {
		s.GuestName = &guestName.String
	}
	return &s, nil
}

// listSignupViews возвращает записи с отображаемым именем, сгруппированные по тренировке.
func listSignupViews(ctx context.Context, q queryer, where string, args ...any) (map[string][]models.SignupView, error) {
	query := `SELECT ` + signupColumns + `, COALESCE(u.name, s.guest_name, '')
			  FROM signups s
			  LEFT JOIN users u ON u.id = s.user_id ` + where + `
			  ORDER BY s.signed_at, s.id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string][]models.SignupView)
	for rows.Next() {
		var name string
		s, err := scanSignup(rows, &name)
		if err != nil {
			return nil, err
		}
		result[s.TrainingID] = append(result[s.TrainingID], models.SignupView{Signup: *s, DisplayName: name})
	}
	return result, rows.Err()
}

// GetSignup возвращает запись по ID.
func (s *Storage) GetSignup(ctx context.Context, id string) (*models.Signup, error) {
	const op = "storage.GetSignup"

	query := `SELECT ` + signupColumns + ` FROM signups s WHERE s.id = $1`
	signup, err := scanSignup(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return signup, nil
}

// ListSignupsByParticipant возвращает записи, где пользователь участник или создатель.
func (s *Storage) ListSignupsByParticipant(ctx context.Context, userID string) ([]models.MySignup, error) {
	const op = "storage.ListSignupsByParticipant"

	query := `SELECT ` + signupColumns + `, t.title, t.start_time
			  FROM signups s
			  JOIN trainings t ON t.id = s.training_id
			  WHERE s.user_id = $1 OR s.created_by_id = $1
			  ORDER BY t.start_time, s.signed_at`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.MySignup, 0)
	for rows.Next() {
		var item models.MySignup
		signup, err := scanSignup(rows, &item.TrainingTitle, &item.TrainingStartTime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Signup = *signup
		item.IsGuest = signup.UserID == nil
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteExpiredPending одним условным запросом удаляет неподтверждённые записи,
// срок которых истёк к моменту now, и возвращает удалённые строки.
func (s *Storage) DeleteExpiredPending(ctx context.Context, now time.Time) ([]models.SignupRef, error) {
	const op = "storage.DeleteExpiredPending"

	query := `DELETE FROM signups
			  WHERE status = 'pending' AND expires_at < $1
			  RETURNING id, training_id`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.SignupRef
	for rows.Next() {
		var ref models.SignupRef
		if err := rows.Scan(&ref.ID, &ref.TrainingID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, ref)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveSignups считает занятые места на тренировке в момент now.
func (t *pgTx) CountActiveSignups(ctx context.Context, trainingID string, now time.Time) (int, error) {
	const op = "storage.CountActiveSignups"

	query := `SELECT COUNT(*) FROM signups s
			  WHERE s.training_id = $1 AND ` + activeSignupPredicate
	var count int
	if err := t.tx.QueryRowContext(ctx, query, trainingID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// HasActiveSignup проверяет, есть ли у пользователя активная запись на тренировку.
func (t *pgTx) HasActiveSignup(ctx context.Context, trainingID, userID string, now time.Time) (bool, error) {
	const op = "storage.HasActiveSignup"

	query := `SELECT EXISTS (
			      SELECT 1 FROM signups s
			      WHERE s.training_id = $1 AND ` + activeSignupPredicate + ` AND s.user_id = $3
			  )`
	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, trainingID, now, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertSignup сохраняет новую запись.
func (t *pgTx) InsertSignup(ctx context.Context, signup *models.Signup) error {
	const op = "storage.InsertSignup"

	query := `INSERT INTO signups (id, training_id, user_id, guest_name, created_by_id,
			      status, expires_at, signed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := t.tx.ExecContext(ctx, query, signup.ID, signup.TrainingID, signup.UserID,
		signup.GuestName, signup.CreatedByID, string(signup.Status), signup.ExpiresAt, signup.SignedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LockSignup читает запись и блокирует строку до конца транзакции.
func (t *pgTx) LockSignup(ctx context.Context, id string) (*models.Signup, error) {
	const op = "storage.LockSignup"

	query := `SELECT ` + signupColumns + ` FROM signups s WHERE s.id = $1 FOR UPDATE`
	signup, err := scanSignup(t.tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return signup, nil
}

// UpdateSignupStatus меняет статус записи.
func (t *pgTx) UpdateSignupStatus(ctx context.Context, id string, status models.SignupStatus) error {
	const op = "storage.UpdateSignupStatus"

	res, err := t.tx.ExecContext(ctx, `UPDATE signups SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// DeleteSignup удаляет запись.
func (t *pgTx) DeleteSignup(ctx context.Context, id string) error {
	const op = "storage.DeleteSignup"

	res, err := t.tx.ExecContext(ctx, `DELETE FROM signups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return requireAffected(op, res)
}

// DeleteSignupsByTraining удаляет все записи тренировки и возвращает их ID.
func (t *pgTx) DeleteSignupsByTraining(ctx context.Context, trainingID string) ([]string, error) {
	const op = "storage.DeleteSignupsByTraining"

	rows, err := t.tx.QueryContext(ctx, `DELETE FROM signups WHERE training_id = $1 RETURNING id`, trainingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
