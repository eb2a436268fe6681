// Package storage описывает контракт транзакционного хранилища записей на тренировки.
// Реализации: repository (PostgreSQL) и memory (встроенное хранилище для разработки и тестов).
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// Tx — операции, доступные внутри одной транзакции.
// Lock-методы берут блокировку строки до конца транзакции.
type Tx interface {
	LockTraining(ctx context.Context, id string) (*models.Training, error)
	CountActiveSignups(ctx context.Context, trainingID string, now time.Time) (int, error)
	HasActiveSignup(ctx context.Context, trainingID, userID string, now time.Time) (bool, error)
	InsertSignup(ctx context.Context, signup *models.Signup) error
	LockSignup(ctx context.Context, id string) (*models.Signup, error)
	UpdateSignupStatus(ctx context.Context, id string, status models.SignupStatus) error
	DeleteSignup(ctx context.Context, id string) error
	DeleteSignupsByTraining(ctx context.Context, trainingID string) ([]string, error)
	DeleteTraining(ctx context.Context, id string) error
}

// TxRunner выполняет fn в одной транзакции. Ошибка fn откатывает транзакцию.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Classify приводит ошибки конкурентного доступа PostgreSQL к models.ErrStoreConflict.
// Остальные ошибки возвращаются без изменений.
func Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return fmt.Errorf("%w: %s", models.ErrStoreConflict, pgErr.Message)
	default:
		return err
	}
}
