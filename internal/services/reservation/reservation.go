// Package reservation содержит движок записи на тренировки: создание, подтверждение
// и удаление записей с соблюдением лимита участников.
//
// Все проверки выполняются внутри одной транзакции хранилища после блокировки строки
// тренировки, поэтому конкурентные запросы на одну тренировку сериализуются.
package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/metrics"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage"
)

// DefaultPendingTTL время, за которое нужно подтвердить запись.
const DefaultPendingTTL = 15 * time.Minute

// Store транзакционное хранилище записей.
type Store interface {
	storage.TxRunner
	// GetSignup возвращает запись по ID.
	GetSignup(ctx context.Context, id string) (*models.Signup, error)
	// ListSignupsByParticipant возвращает записи пользователя и его гостей.
	ListSignupsByParticipant(ctx context.Context, userID string) ([]models.MySignup, error)
}

// Publisher рассылает события об изменениях.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Cache сбрасывает закэшированный список тренировок.
type Cache interface {
	Invalidate(key string) error
}

// Engine движок записи на тренировки.
type Engine struct {
	store     Store
	publisher Publisher
	cache     Cache
	log       *slog.Logger
	ttl       time.Duration
	now       func() time.Time
}

// Option настраивает Engine.
type Option func(*Engine)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPendingTTL задает время жизни неподтвержденной записи.
func WithPendingTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// NewEngine создает движок записи.
func NewEngine(store Store, publisher Publisher, cache Cache, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: publisher,
		cache:     cache,
		log:       log,
		ttl:       DefaultPendingTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create записывает на тренировку самого пользователя или, если guestName не пуст, его гостя.
// Новая запись получает статус pending и срок подтверждения now+TTL.
func (e *Engine) Create(ctx context.Context, trainingID string, actor *models.User, guestName string) (*models.Signup, error) {
	const op = "reservation.Create"
	guestName = strings.TrimSpace(guestName)

	var created *models.Signup
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		training, err := tx.LockTraining(ctx, trainingID)
		if err != nil {
			return err
		}
		// время берется после блокировки, иначе ожидание блокировки сдвигает окно проверки
		now := e.now().UTC()
		if training.OpenAt != nil && now.Before(*training.OpenAt) {
			return &models.NotYetOpenError{OpenAt: *training.OpenAt}
		}

		active, err := tx.CountActiveSignups(ctx, trainingID, now)
		if err != nil {
			return err
		}
		if active >= training.MaxParticipants {
			return models.ErrFull
		}

		signup := &models.Signup{
			ID:          uuid.New().String(),
			TrainingID:  trainingID,
			CreatedByID: actor.ID,
			Status:      models.StatusPending,
			ExpiresAt:   now.Add(e.ttl),
			SignedAt:    now,
		}
		if guestName == "" {
			dup, err := tx.HasActiveSignup(ctx, trainingID, actor.ID, now)
			if err != nil {
				return err
			}
			if dup {
				return models.ErrAlreadySignedUp
			}
			userID := actor.ID
			signup.UserID = &userID
		} else {
			signup.GuestName = &guestName
		}

		if err := tx.InsertSignup(ctx, signup); err != nil {
			return err
		}
		created = signup
		return nil
	})
	if err != nil {
		metrics.SignupsRejected.WithLabelValues(metrics.Reason(err)).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignupsCreated.Inc()
	e.log.Info("signup created",
		sl.Signup(created.ID),
		sl.Training(trainingID),
		slog.Bool("guest", created.GuestName != nil))
	e.afterCommit(ctx, models.EventSignupCreated, models.SignupEvent{TrainingID: trainingID, Signup: created})
	return created, nil
}

// Confirm переводит запись из pending в confirmed. Подтвердить может только владелец,
// и только пока не истек срок подтверждения.
func (e *Engine) Confirm(ctx context.Context, trainingID, signupID string, actor *models.User) (*models.Signup, error) {
	const op = "reservation.Confirm"

	var confirmed *models.Signup
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		signup, err := tx.LockSignup(ctx, signupID)
		if err != nil {
			return err
		}
		if signup.TrainingID != trainingID {
			return models.ErrNotFound
		}
		if !signup.IsOwnedBy(actor.ID) {
			return models.ErrForbidden
		}
		if signup.Status != models.StatusPending {
			return models.ErrNotPending
		}
		if !e.now().Before(signup.ExpiresAt) {
			return models.ErrExpired
		}
		if err := tx.UpdateSignupStatus(ctx, signupID, models.StatusConfirmed); err != nil {
			return err
		}
		signup.Status = models.StatusConfirmed
		confirmed = signup
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignupsConfirmed.Inc()
	e.log.Info("signup confirmed", sl.Signup(signupID), sl.Training(trainingID))
	e.afterCommit(ctx, models.EventSignupUpdated, models.SignupEvent{TrainingID: trainingID, Signup: confirmed})
	return confirmed, nil
}

// Delete удаляет запись. Администратор может удалить любую запись, остальные только свою.
// Записи завершенной тренировки не удаляются.
func (e *Engine) Delete(ctx context.Context, trainingID, signupID string, actor *models.User) error {
	const op = "reservation.Delete"

	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		training, err := tx.LockTraining(ctx, trainingID)
		if err != nil {
			return err
		}
		if !training.FinishedAt().After(e.now()) {
			return models.ErrForbidden
		}
		signup, err := tx.LockSignup(ctx, signupID)
		if err != nil {
			return err
		}
		if signup.TrainingID != trainingID {
			return models.ErrNotFound
		}
		if !actor.IsAdmin() && !signup.IsOwnedBy(actor.ID) {
			return models.ErrForbidden
		}
		return tx.DeleteSignup(ctx, signupID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignupsDeleted.WithLabelValues("user").Inc()
	e.log.Info("signup deleted",
		sl.Signup(signupID),
		sl.Training(trainingID),
		slog.String("by", actor.ID))
	e.afterCommit(ctx, models.EventSignupDeleted, models.SignupRef{ID: signupID, TrainingID: trainingID})
	return nil
}

// Get возвращает запись, если она принадлежит тренировке trainingID.
func (e *Engine) Get(ctx context.Context, trainingID, signupID string) (*models.Signup, error) {
	const op = "reservation.Get"
	signup, err := e.store.GetSignup(ctx, signupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if signup.TrainingID != trainingID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return signup, nil
}

// ListMine возвращает записи пользователя, включая записанных им гостей.
func (e *Engine) ListMine(ctx context.Context, actor *models.User) ([]models.MySignup, error) {
	const op = "reservation.ListMine"
	res, err := e.store.ListSignupsByParticipant(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// afterCommit сбрасывает кэш и публикует событие. Ошибки здесь не отменяют
// уже зафиксированное изменение и только логируются.
func (e *Engine) afterCommit(ctx context.Context, event string, payload any) {
	if err := e.cache.Invalidate(cache.TrainingsListKey); err != nil {
		e.log.Warn("failed to invalidate trainings cache", sl.Err(err))
	}
	if err := e.publisher.Publish(ctx, event, payload); err != nil {
		e.log.Error("failed to publish event", sl.Event(event), sl.Err(err))
	}
}
