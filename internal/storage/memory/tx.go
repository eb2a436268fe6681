package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// memTx работает с map хранилища напрямую и копит журнал отката.
type memTx struct {
	s    *Storage
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) LockTraining(_ context.Context, id string) (*models.Training, error) {
	training, ok := t.s.trainings[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.LockTraining: %w", models.ErrNotFound)
	}
	return &training, nil
}

func (t *memTx) CountActiveSignups(_ context.Context, trainingID string, now time.Time) (int, error) {
	count := 0
	for _, signup := range t.s.signups {
		if signup.TrainingID == trainingID && signup.IsActive(now) {
			count++
		}
	}
	return count, nil
}

func (t *memTx) HasActiveSignup(_ context.Context, trainingID, userID string, now time.Time) (bool, error) {
	for _, signup := range t.s.signups {
		if signup.TrainingID == trainingID && signup.UserID != nil && *signup.UserID == userID && signup.IsActive(now) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertSignup(_ context.Context, signup *models.Signup) error {
	if _, ok := t.s.trainings[signup.TrainingID]; !ok {
		return fmt.Errorf("storage.memory.InsertSignup: %w", models.ErrNotFound)
	}
	if _, ok := t.s.signups[signup.ID]; ok {
		return fmt.Errorf("storage.memory.InsertSignup: duplicate id %s", signup.ID)
	}
	t.s.signups[signup.ID] = *signup
	id := signup.ID
	t.undo = append(t.undo, func() { delete(t.s.signups, id) })
	return nil
}

func (t *memTx) LockSignup(_ context.Context, id string) (*models.Signup, error) {
	signup, ok := t.s.signups[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.LockSignup: %w", models.ErrNotFound)
	}
	return &signup, nil
}

func (t *memTx) UpdateSignupStatus(_ context.Context, id string, status models.SignupStatus) error {
	signup, ok := t.s.signups[id]
	if !ok {
		return fmt.Errorf("storage.memory.UpdateSignupStatus: %w", models.ErrNotFound)
	}
	prev := signup
	signup.Status = status
	t.s.signups[id] = signup
	t.undo = append(t.undo, func() { t.s.signups[id] = prev })
	return nil
}

func (t *memTx) DeleteSignup(_ context.Context, id string) error {
	signup, ok := t.s.signups[id]
	if !ok {
		return fmt.Errorf("storage.memory.DeleteSignup: %w", models.ErrNotFound)
	}
	delete(t.s.signups, id)
	t.undo = append(t.undo, func() { t.s.signups[id] = signup })
	return nil
}

func (t *memTx) DeleteSignupsByTraining(ctx context.Context, trainingID string) ([]string, error) {
	var ids []string
	for id, signup := range t.s.signups {
		if signup.TrainingID == trainingID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := t.DeleteSignup(ctx, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (t *memTx) DeleteTraining(_ context.Context, id string) error {
	training, ok := t.s.trainings[id]
	if !ok {
		return fmt.Errorf("storage.memory.DeleteTraining: %w", models.ErrNotFound)
	}
	delete(t.s.trainings, id)
	t.undo = append(t.undo, func() { t.s.trainings[id] = training })
	return nil
}
