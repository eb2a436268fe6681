package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/reservation"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/sweeper"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIntegration_ConcurrentCreateRespectsCapacity(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)

	const seats, racers = 5, 20
	admin := factory.CreateUser(t, models.RoleAdmin)
	training := factory.CreateTraining(t, admin, seats)
	engine := reservation.NewEngine(storage, notifier.Nop{}, cache.Nop{}, newNoopLogger())

	actors := make([]*models.User, racers)
	for i := range actors {
		actors[i] = &models.User{ID: factory.CreateUser(t, models.RoleUser), Role: models.RoleUser}
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for _, actor := range actors {
		wg.Add(1)
		go func(actor *models.User) {
			defer wg.Done()
			_, err := engine.Create(context.Background(), training.ID, actor, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(actor)
	}
	wg.Wait()

	assert.Equal(t, seats, ok)
	assert.Equal(t, racers-seats, full)
	assert.Equal(t, seats, factory.CountSignups(t, training.ID))
}

func TestIntegration_ConcurrentDuplicateSelfSignup(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)

	admin := factory.CreateUser(t, models.RoleAdmin)
	training := factory.CreateTraining(t, admin, 10)
	actor := &models.User{ID: factory.CreateUser(t, models.RoleUser), Role: models.RoleUser}
	engine := reservation.NewEngine(storage, notifier.Nop{}, cache.Nop{}, newNoopLogger())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Create(context.Background(), training.ID, actor, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrAlreadySignedUp):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, rejected)
	assert.Equal(t, 1, factory.CountSignups(t, training.ID))
}

func TestIntegration_ExpiryAndSweep(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)

	admin := factory.CreateUser(t, models.RoleAdmin)
	training := factory.CreateTraining(t, admin, 1)
	owner := &models.User{ID: factory.CreateUser(t, models.RoleUser), Role: models.RoleUser}
	other := &models.User{ID: factory.CreateUser(t, models.RoleUser), Role: models.RoleUser}

	// Часы движка отстают, чтобы записи успели истечь и по реальному времени очистки.
	now := time.Now().UTC().Add(-10 * time.Minute)
	clock := func() time.Time { return now }
	engine := reservation.NewEngine(storage, notifier.Nop{}, cache.Nop{}, newNoopLogger(),
		reservation.WithClock(clock), reservation.WithPendingTTL(time.Minute))

	signup, err := engine.Create(context.Background(), training.ID, owner, "")
	require.NoError(t, err)

	_, err = engine.Create(context.Background(), training.ID, other, "")
	require.ErrorIs(t, err, models.ErrFull)

	now = now.Add(2 * time.Minute)

	_, err = engine.Confirm(context.Background(), training.ID, signup.ID, owner)
	require.ErrorIs(t, err, models.ErrExpired)
	got, err := storage.GetSignup(context.Background(), signup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	// Просроченная запись не занимает место еще до очистки.
	second, err := engine.Create(context.Background(), training.ID, other, "")
	require.NoError(t, err)
	_, err = engine.Confirm(context.Background(), training.ID, second.ID, other)
	require.NoError(t, err)

	sw := sweeper.New(storage, notifier.Nop{}, cache.Nop{}, newNoopLogger(), time.Minute)
	n, err := sw.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = sw.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = storage.GetSignup(context.Background(), signup.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 1, factory.CountSignups(t, training.ID))
}
