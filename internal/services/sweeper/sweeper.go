// Package sweeper удаляет неподтвержденные записи с истекшим сроком подтверждения
// и оповещает подписчиков об освободившихся местах.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/metrics"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// DefaultInterval период запуска очистки.
const DefaultInterval = 15 * time.Minute

// Repository удаляет просроченные записи одним условным запросом.
type Repository interface {
	DeleteExpiredPending(ctx context.Context, now time.Time) ([]models.SignupRef, error)
}

// Publisher рассылает события об изменениях.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Cache сбрасывает закэшированный список тренировок.
type Cache interface {
	Invalidate(key string) error
}

// Sweeper периодически удаляет просроченные записи.
type Sweeper struct {
	repo      Repository
	publisher Publisher
	cache     Cache
	log       *slog.Logger
	interval  time.Duration
	now       func() time.Time
	running   atomic.Bool
}

// New создает Sweeper. Неположительный interval заменяется на DefaultInterval.
func New(repo Repository, publisher Publisher, cache Cache, log *slog.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		log:       log,
		interval:  interval,
		now:       time.Now,
	}
}

// SweepOnce выполняет один проход и возвращает число удаленных записей.
// Если предыдущий проход еще не завершен, возвращает 0 без обращения к хранилищу.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	const op = "sweeper.SweepOnce"
	if !s.running.CompareAndSwap(false, true) {
		metrics.SweeperRuns.WithLabelValues("skipped").Inc()
		return 0, nil
	}
	defer s.running.Store(false)

	refs, err := s.repo.DeleteExpiredPending(ctx, s.now().UTC())
	if err != nil {
		metrics.SweeperRuns.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SweeperRuns.WithLabelValues("ok").Inc()
	if len(refs) == 0 {
		return 0, nil
	}

	metrics.SignupsDeleted.WithLabelValues("sweeper").Add(float64(len(refs)))
	if err := s.cache.Invalidate(cache.TrainingsListKey); err != nil {
		s.log.Warn("failed to invalidate trainings cache", sl.Err(err))
	}
	for _, ref := range refs {
		if err := s.publisher.Publish(ctx, models.EventSignupDeleted, ref); err != nil {
			s.log.Error("failed to publish event",
				sl.Event(models.EventSignupDeleted),
				sl.Signup(ref.ID),
				sl.Err(err))
		}
	}
	return len(refs), nil
}

// Run выполняет проход сразу и затем по таймеру, пока не отменен ctx.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("expiry sweeper started", slog.Duration("interval", s.interval))
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	n, err := s.SweepOnce(ctx)
	if err != nil {
		s.log.Error("sweep failed", sl.Err(err))
		return
	}
	if n > 0 {
		s.log.Info("expired signups removed", slog.Int("count", n))
	}
}
