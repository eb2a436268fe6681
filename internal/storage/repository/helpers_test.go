package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gokart-trainings/internal/migrations"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, role string) string {
	id := uuid.New().String()
	err := f.storage.UpsertUser(context.Background(), models.User{
		ID:    id,
		Email: id + "@example.com",
		Name:  "racer-" + id[:8],
		Role:  role,
	})
	require.NoError(t, err)
	return id
}

// CreateTraining создает тестовую тренировку на указанное число мест
func (f *TestDataFactory) CreateTraining(t *testing.T, createdBy string, maxParticipants int) *models.Training {
	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(2 * time.Hour)
	training := &models.Training{
		ID:              uuid.New().String(),
		Title:           "Вечерняя тренировка",
		StartTime:       start,
		EndTime:         &end,
		MaxParticipants: maxParticipants,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, f.storage.CreateTraining(context.Background(), training))
	return training
}

// CreateSignup вставляет запись напрямую, минуя проверки движка
func (f *TestDataFactory) CreateSignup(t *testing.T, trainingID, userID string, status models.SignupStatus, expiresAt time.Time) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO signups (id, training_id, user_id, created_by_id, status, expires_at, signed_at)
		VALUES ($1, $2, $3, $3, $4, $5, now())`,
		id, trainingID, userID, string(status), expiresAt)
	require.NoError(t, err)
	return id
}

// CountSignups возвращает число записей на тренировку
func (f *TestDataFactory) CountSignups(t *testing.T, trainingID string) int {
	var count int
	err := f.storage.DB.QueryRow(`SELECT COUNT(*) FROM signups WHERE training_id = $1`, trainingID).Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase создает тестовую БД в контейнере PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr, 2*time.Second)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath, newNoopLogger()))

	cleanup := func() {
		_ = storage.DB.Close()
		_ = postgresContainer.Terminate(ctx)
	}
	return storage, cleanup
}
