// Package sweeper содержит отдельный процесс очистки просроченных записей.
//
// Процесс нужен, когда API запущено в нескольких экземплярах со sweeper.embedded: false.
// События об удаленных записях уходят в redis, откуда их забирают все экземпляры API.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gokart-trainings/internal/cache"
	"github.com/magabrotheeeer/gokart-trainings/internal/config"
	"github.com/magabrotheeeer/gokart-trainings/internal/lib/sl"
	"github.com/magabrotheeeer/gokart-trainings/internal/notifier"
	sweeperservice "github.com/magabrotheeeer/gokart-trainings/internal/services/sweeper"
	"github.com/magabrotheeeer/gokart-trainings/internal/storage/repository"
)

// App представляет приложение очистки.
type App struct {
	sweeper *sweeperservice.Sweeper
	db      *repository.Storage
	cache   *cache.Cache
	logger  *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает приложение очистки. Встроенное хранилище не поддерживается:
// его данные живут только внутри процесса API.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return nil, fmt.Errorf("expiry sweeper requires storage_driver %q", config.StorageDriverPostgres)
	}
	db, err := repository.New(cfg.StorageConnectionString, cfg.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(db); err != nil {
		_ = db.DB.Close()
		return nil, err
	}

	a := &App{db: db, logger: logger}
	var (
		publisher notifier.Publisher   = notifier.Nop{}
		lc        sweeperservice.Cache = cache.Nop{}
	)
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.DB.Close()
			return nil, fmt.Errorf("cache not initialized: %w", err)
		}
		a.cache = redisCache
		lc = redisCache
		publisher = notifier.Fanout{notifier.NewRedisPublisher(redisCache.Db, cfg.RedisChannel)}
	} else {
		logger.Warn("redis is not configured, API instances will not be notified about swept signups")
	}

	a.sweeper = sweeperservice.New(db, publisher, lc, logger, cfg.Sweeper.Interval)
	return a, nil
}

// Run запускает очистку до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.sweeper.Run(ctx)

	a.logger.Info("shutting down expiry sweeper")
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
