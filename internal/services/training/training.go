// Package training содержит бизнес-логику управления тренировками и кэширование их списка.
package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/metrics"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage"
)

// Repository определяет методы для работы с тренировками в хранилище.
type Repository interface {
	storage.TxRunner
	// CreateTraining сохраняет новую тренировку.
	CreateTraining(ctx context.Context, t *models.Training) error
	// GetTraining возвращает тренировку с записями.
	GetTraining(ctx context.Context, id string) (*models.TrainingWithSignups, error)
	// ListTrainings возвращает все тренировки с записями.
	ListTrainings(ctx context.Context) ([]models.TrainingWithSignups, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Publisher рассылает события об изменениях.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Service реализует операции над тренировками.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
	cacheTTL  time.Duration
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, publisher Publisher, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
		cacheTTL:  cacheTTL,
	}
}

// Create создает тренировку. Доступно только администратору.
func (s *Service) Create(ctx context.Context, actor *models.User, req models.DummyTraining) (*models.Training, error) {
	const op = "training.Create"
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	req.Normalize()
	if req.Title == "" {
		return nil, fmt.Errorf("%s: %w: title is required", op, models.ErrInvalidInput)
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("%s: %w: endTime must be after startTime", op, models.ErrInvalidInput)
	}

	t := &models.Training{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime.UTC(),
		EndTime:         utcPtr(req.EndTime),
		OpenAt:          utcPtr(req.OpenAt),
		MaxParticipants: req.MaxParticipants,
		CreatedBy:       actor.ID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateTraining(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("training created", sl.Training(t.ID), slog.String("by", actor.ID))
	s.afterCommit(ctx, models.EventNewTraining, models.TrainingWithSignups{Training: *t, Signups: []models.SignupView{}})
	return t, nil
}

// Delete удаляет тренировку вместе со всеми записями на нее. Доступно только администратору.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	const op = "training.Delete"
	if !actor.IsAdmin() {
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	var removed []string
	err := s.repo.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.LockTraining(ctx, id); err != nil {
			return err
		}
		ids, err := tx.DeleteSignupsByTraining(ctx, id)
		if err != nil {
			return err
		}
		removed = ids
		return tx.DeleteTraining(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.SignupsDeleted.WithLabelValues("training").Add(float64(len(removed)))
	s.log.Info("training deleted",
		sl.Training(id),
		slog.Int("signups_removed", len(removed)),
		slog.String("by", actor.ID))
	s.afterCommit(ctx, models.EventTrainingDeleted, models.TrainingDeletedEvent{TrainingID: id})
	return nil
}

// Get возвращает тренировку со списком записей.
func (s *Service) Get(ctx context.Context, id string) (*models.TrainingWithSignups, error) {
	const op = "training.Get"
	t, err := s.repo.GetTraining(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// List возвращает все тренировки со списками записей. Результат кэшируется.
func (s *Service) List(ctx context.Context) ([]models.TrainingWithSignups, error) {
	const op = "training.List"

	var cached []models.TrainingWithSignups
	found, err := s.cache.Get(cache.TrainingsListKey, &cached)
	if err != nil {
		s.log.Warn("failed to read trainings from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := s.repo.ListTrainings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(cache.TrainingsListKey, list, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache trainings", sl.Err(err))
	}
	return list, nil
}

func (s *Service) afterCommit(ctx context.Context, event string, payload any) {
	if err := s.cache.Invalidate(cache.TrainingsListKey); err != nil {
		s.log.Warn("failed to invalidate trainings cache", sl.Err(err))
	}
	if err := s.publisher.Publish(ctx, event, payload); err != nil {
		s.log.Error("failed to publish event", sl.Event(event), sl.Err(err))
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
