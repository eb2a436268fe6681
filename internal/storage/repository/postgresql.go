// Package repository реализует хранилище тренировок, записей и пользователей
// на основе PostgreSQL. Операции движка записи выполняются в транзакциях
// READ COMMITTED, первой командой которых берется блокировка SELECT ... FOR UPDATE.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/gokart-trainings/internal/storage"
)

// DefaultIsolation уровень изоляции транзакций InTx. Взаимное исключение дает
// блокировка строки, а каждая следующая команда видит зафиксированные до нее записи.
// При SERIALIZABLE снимок берется до ожидания блокировки, и конкурирующие записи
// на одну тренировку падают с 40001 при свободных местах.
const DefaultIsolation = sql.LevelReadCommitted

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB          *sql.DB
	lockTimeout time.Duration
	isolation   sql.IsolationLevel
}

// queryer — общее подмножество *sql.DB и *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New создаёт подключение к PostgreSQL. lockTimeout ограничивает ожидание
// блокировок строк внутри транзакций, ноль означает ожидание без ограничения.
func New(storageConnectionString string, lockTimeout time.Duration) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithDB(db, lockTimeout), nil
}

// NewWithDB оборачивает уже открытое соединение.
func NewWithDB(db *sql.DB, lockTimeout time.Duration) *Storage {
	return &Storage{DB: db, lockTimeout: lockTimeout, isolation: DefaultIsolation}
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'signups'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage.CheckDatabaseReady: required table signups missing")
	}
	return nil
}

// InTx выполняет fn в транзакции с уровнем DefaultIsolation. Ошибки сериализации,
// взаимоблокировки и таймаута блокировки возвращаются как models.ErrStoreConflict.
func (s *Storage) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	const op = "storage.InTx"

	sqlTx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: s.isolation})
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.Classify(err))
	}

	if s.lockTimeout > 0 {
		query := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err = sqlTx.ExecContext(ctx, query); err != nil {
			_ = sqlTx.Rollback()
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = fn(&pgTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return storage.Classify(err)
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, storage.Classify(err))
	}
	return nil
}

// pgTx реализует storage.Tx поверх *sql.Tx.
type pgTx struct {
	tx *sql.Tx
}

// Ping проверяет соединение с базой данных.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("storage.Ping: %w", err)
	}
	return nil
}
