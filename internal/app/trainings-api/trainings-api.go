package trainingsapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/http/handlers/health"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/jwt"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/migrations"
	"github.com/magabrotheeeer/gokart-trainings/internal/models"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
	"github.com/magabrotheeeer/gokart-trainings/internal/rabbitmq"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/reservation"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/sweeper"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/training"
	"github.com/magabrotheeeer/gokart-trainings/internal/services/users"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage/memory"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage/repository"
)

// Store общий интерфейс PostgreSQL и встроенного хранилища.
type Store interface {
	reservation.Store
	training.Repository
	users.Repository
	sweeper.Repository
}

// DemoUserID пользователь, которого встроенное хранилище создает вместе с администратором.
const DemoUserID = "00000000-0000-0000-0000-000000000002"

// AdminUserID администратор из начальной миграции.
const AdminUserID = "00000000-0000-0000-0000-000000000001"

// App HTTP API со всеми фоновыми задачами процесса.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	relay   *notifier.RedisRelay
	sweeper *sweeper.Sweeper
	closers []func() error
}

// New создает приложение: хранилище, кэш, публикаторы событий и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}
	checks := map[string]health.Check{}

	store, err := a.openStore(cfg, checks)
	if err != nil {
		return nil, err
	}

	hub := notifier.NewHub(cfg.SubscriberBuffer, logger)
	var (
		lc         training.Cache = cache.Nop{}
		publishers notifier.Fanout
	)

	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		a.closers = append(a.closers, redisCache.Close)
		checks["redis"] = redisCache.Ping
		lc = redisCache
		// Локальный Hub получает события через redis, как и остальные экземпляры.
		publishers = append(publishers, notifier.NewRedisPublisher(redisCache.Db, cfg.RedisChannel))
		a.relay = notifier.NewRedisRelay(redisCache.Db, cfg.RedisChannel, hub, logger)
	} else {
		logger.Warn("redis is not configured, list cache and cross-instance events are disabled")
		publishers = append(publishers, hub)
	}

	if cfg.RabbitMQURL != "" {
		conn, ch, err := connectRabbit(ctx, cfg, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, ch.Close, conn.Close)
		checks["rabbitmq"] = func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
		publishers = append(publishers, notifier.NewAMQPPublisher(ch, cfg.Exchange))
	}

	trainingService := training.NewService(store, lc, publishers, logger, cfg.CacheTTL)
	engine := reservation.NewEngine(store, publishers, lc, logger, reservation.WithPendingTTL(cfg.PendingTTL))
	userService := users.NewService(store, publishers, logger)

	if cfg.Embedded {
		a.sweeper = sweeper.New(store, publishers, lc, logger, cfg.Sweeper.Interval)
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Trainings:      trainingService,
		Signups:        engine,
		Users:          userService,
		Tokens:         jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, jwt.WithIssuer(cfg.JWTIssuer)),
		Hub:            hub,
		Checks:         checks,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// WriteTimeout не задан: он оборвал бы WebSocket-соединения /ws.
	a.server = &http.Server{
		Addr:              cfg.AddressHTTP,
		Handler:           router,
		ReadHeaderTimeout: cfg.TimeoutHTTP,
		ReadTimeout:       cfg.TimeoutHTTP,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return a, nil
}

func (a *App) openStore(cfg *config.Config, checks map[string]health.Check) (Store, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		a.logger.Warn("using in-memory storage, data is lost on restart")
		s := memory.New()
		if err := SeedMemory(context.Background(), s); err != nil {
			return nil, err
		}
		return s, nil
	}

	db, err := repository.New(cfg.StorageConnectionString, cfg.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	a.closers = append(a.closers, db.DB.Close)
	if err := migrations.Run(db.DB, cfg.MigrationsPath, a.logger); err != nil {
		a.close()
		return nil, err
	}
	checks["postgres"] = db.Ping
	return db, nil
}

// SeedMemory создает во встроенном хранилище администратора и демо-пользователя.
func SeedMemory(ctx context.Context, s *memory.Storage) error {
	seed := []models.User{
		{ID: AdminUserID, Email: "admin@gokart.local", Name: "Admin", Role: models.RoleAdmin},
		{ID: DemoUserID, Email: "driver@gokart.local", Name: "Driver", Role: models.RoleUser},
	}
	for _, u := range seed {
		if err := s.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("trainingsapi.SeedMemory: %w", err)
		}
	}
	return nil
}

func connectRabbit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := rabbitmq.Dial(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.Open(conn, rabbitmq.SignupTopology(cfg.Exchange))
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	return conn, ch, nil
}

// Run запускает HTTP-сервер и фоновые задачи до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		a.close()
	}()

	if a.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.runRelay(bgCtx)
		}()
	}
	if a.sweeper != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.sweeper.Run(bgCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

// runRelay переподключает мост redis после обрыва подписки.
func (a *App) runRelay(ctx context.Context) {
	for {
		err := a.relay.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		a.logger.Error("redis event relay stopped, reconnecting", sl.Err(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (a *App) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
