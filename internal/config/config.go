// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Драйверы хранилища.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string        `yaml:"env" env:"ENV" env-default:"local"`
	StorageDriver           string        `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string        `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	LockTimeout             time.Duration `yaml:"lock_timeout" env:"LOCK_TIMEOUT" env-default:"5s"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Reservation             `yaml:"reservation"`
	Sweeper                 `yaml:"sweeper"`
	Notifier                `yaml:"notifier"`
	Mail                    `yaml:"mail"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":4000"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"5"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш и мост событий между процессами.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1m"`
}

// RabbitMQ структура для настройки подключения к брокеру.
// Пустой URL отключает публикацию событий в брокер.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"10"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
	Exchange           string        `yaml:"exchange" env-default:"trainings.events"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`

	// JWTIssuer если задан, токены с другим iss отклоняются.
	JWTIssuer string `yaml:"issuer" env:"JWT_ISSUER"`
}

// Reservation настройки движка записи
type Reservation struct {
	PendingTTL time.Duration `yaml:"pending_ttl" env:"PENDING_TTL" env-default:"15m"`
}

// Sweeper настройки очистки просроченных записей
type Sweeper struct {
	Interval time.Duration `yaml:"interval" env:"SWEEPER_INTERVAL" env-default:"15m"`
	Embedded bool          `yaml:"embedded" env:"SWEEPER_EMBEDDED" env-default:"true"`
}

// Notifier настройки рассылки событий
type Notifier struct {
	RedisChannel     string `yaml:"redis_channel" env-default:"trainings:events"`
	SubscriberBuffer int    `yaml:"subscriber_buffer" env-default:"64"`
}

// Mail настройки отправки писем-напоминаний
type Mail struct {
	Provider    string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"smtp"`
	FromAddress string `yaml:"from_address" env:"MAIL_FROM"`
	FromName    string `yaml:"from_name" env-default:"GoKart Trainings"`
	SMTP        `yaml:"smtp"`
	SES         `yaml:"ses"`
}

// SMTP параметры SMTP-сервера
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`

	// SMTPTimeout ограничивает установку соединения.
	SMTPTimeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// SES параметры AWS SES
type SES struct {
	Region             string `yaml:"region" env:"SES_REGION"`
	AccessKeyID        string `yaml:"access_key_id" env:"SES_ACCESS_KEY_ID"`
	SecretAccessKey    string `yaml:"secret_access_key" env:"SES_SECRET_ACCESS_KEY"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// MustLoad функция для загрузки конфига из файла CONFIG_PATH.
// Вне prod сначала подгружается .env из текущего каталога.
// Переменные окружения перекрывают значения из файла.
func MustLoad() *Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to load .env: %v", err)
		}
	}
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает и проверяет конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.StorageConnectionString == "" {
			return fmt.Errorf("storage_connection_string is required for driver %s", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage_driver %q", c.StorageDriver)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwttoken.jwt_secret_key is required")
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("reservation.pending_ttl must be positive")
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweeper.interval must be positive")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageDriver: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"Reservation:\n"+
			"  PendingTTL: %s\n"+
			"Sweeper:\n"+
			"  Interval: %s\n"+
			"  Embedded: %t\n"+
			"Mail:\n"+
			"  Provider: %s\n",
		c.Env,
		c.StorageDriver,
		c.AddressRedis,
		c.DB,
		c.Exchange,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.PendingTTL,
		c.Sweeper.Interval,
		c.Embedded,
		c.Provider,
	)
}
