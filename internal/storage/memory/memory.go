// Package memory реализует встроенное хранилище в памяти процесса.
// Все транзакции сериализуются одним мьютексом, поэтому проверки вместимости
// и дубликатов внутри InTx выполняются атомарно. Подходит для локального запуска и тестов.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage"
)

// Storage хранит тренировки, записи и пользователей в map.
type Storage struct {
	mu        sync.Mutex
	trainings map[string]models.Training
	signups   map[string]models.Signup
	users     map[string]models.User
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		trainings: make(map[string]models.Training),
		signups:   make(map[string]models.Signup),
		users:     make(map[string]models.User),
	}
}

// InTx выполняет fn под мьютексом хранилища. При ошибке изменения откатываются.
func (s *Storage) InTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("storage.memory.InTx: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// CreateTraining сохраняет новую тренировку.
func (s *Storage) CreateTraining(_ context.Context, t *models.Training) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainings[t.ID]; ok {
		return fmt.Errorf("storage.memory.CreateTraining: duplicate id %s", t.ID)
	}
	s.trainings[t.ID] = *t
	return nil
}

// GetTraining возвращает тренировку вместе с записями.
func (s *Storage) GetTraining(_ context.Context, id string) (*models.TrainingWithSignups, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainings[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.GetTraining: %w", models.ErrNotFound)
	}
	return &models.TrainingWithSignups{Training: t, Signups: s.signupViewsLocked(id)}, nil
}

// ListTrainings возвращает все тренировки по возрастанию времени начала.
func (s *Storage) ListTrainings(_ context.Context) ([]models.TrainingWithSignups, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.TrainingWithSignups, 0, len(s.trainings))
	for _, t := range s.trainings {
		result = append(result, models.TrainingWithSignups{Training: t, Signups: s.signupViewsLocked(t.ID)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (s *Storage) signupViewsLocked(trainingID string) []models.SignupView {
	views := make([]models.SignupView, 0)
	for _, signup := range s.signups {
		if signup.TrainingID != trainingID {
			continue
		}
		view := models.SignupView{Signup: signup}
		switch {
		case signup.UserID != nil:
			view.DisplayName = s.users[*signup.UserID].Name
		case signup.GuestName != nil:
			view.DisplayName = *signup.GuestName
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].SignedAt.Equal(views[j].SignedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].SignedAt.Before(views[j].SignedAt)
	})
	return views
}

// GetSignup возвращает запись по ID.
func (s *Storage) GetSignup(_ context.Context, id string) (*models.Signup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	signup, ok := s.signups[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.GetSignup: %w", models.ErrNotFound)
	}
	return &signup, nil
}

// ListSignupsByParticipant возвращает записи, где пользователь участник или создатель.
func (s *Storage) ListSignupsByParticipant(_ context.Context, userID string) ([]models.MySignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.MySignup, 0)
	for _, signup := range s.signups {
		if !signup.IsOwnedBy(userID) {
			continue
		}
		t := s.trainings[signup.TrainingID]
		result = append(result, models.MySignup{
			Signup:            signup,
			TrainingTitle:     t.Title,
			TrainingStartTime: t.StartTime,
			IsGuest:           signup.UserID == nil,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TrainingStartTime.Equal(result[j].TrainingStartTime) {
			return result[i].SignedAt.Before(result[j].SignedAt)
		}
		return result[i].TrainingStartTime.Before(result[j].TrainingStartTime)
	})
	return result, nil
}

// DeleteExpiredPending удаляет неподтверждённые записи с истёкшим сроком.
func (s *Storage) DeleteExpiredPending(_ context.Context, now time.Time) ([]models.SignupRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refs []models.SignupRef
	for id, signup := range s.signups {
		if signup.Status == models.StatusPending && signup.ExpiresAt.Before(now) {
			delete(s.signups, id)
			refs = append(refs, models.SignupRef{ID: id, TrainingID: signup.TrainingID})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.GetUser: %w", models.ErrNotFound)
	}
	return &u, nil
}

// ListUsers возвращает всех пользователей.
func (s *Storage) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].Email < result[j].Email
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// UpdateUser меняет роль и/или блокировку пользователя.
func (s *Storage) UpdateUser(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage.memory.UpdateUser: %w", models.ErrNotFound)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsBlocked != nil {
		u.IsBlocked = *patch.IsBlocked
	}
	s.users[id] = u
	return &u, nil
}

// UpsertUser сохраняет учётную запись. Роль и блокировка существующего пользователя не меняются.
func (s *Storage) UpsertUser(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[u.ID]; ok {
		existing.Email = u.Email
		existing.Name = u.Name
		s.users[u.ID] = existing
		return nil
	}
	s.users[u.ID] = u
	return nil
}
