package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// SchedulingConfig управляет блокировками и повторами при записи расписаний.
type SchedulingConfig struct {
	LockTimeout    time.Duration `env:"SCHEDULING_LOCK_TIMEOUT" envDefault:"5s"`
	RetryAttempts  int           `env:"SCHEDULING_RETRY_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"SCHEDULING_RETRY_BASE_DELAY" envDefault:"50ms"`
}

func (c SchedulingConfig) Validate() error {
	if c.LockTimeout <= 0 {
		return fmt.Errorf("scheduling lock timeout must be positive, got %s", c.LockTimeout)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("scheduling retry attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("scheduling retry base delay must not be negative, got %s", c.RetryBaseDelay)
	}
	return nil
}

type ServerConfig struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":9090"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// RedisConfig: пустой Addr отключает уведомления.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"schedules"`
}

type Config struct {
	DB         DBConfig
	Scheduling SchedulingConfig
	Server     ServerConfig
	Log        LogConfig
	Redis      RedisConfig
}

// LoadEnv подгружает переменные из существующих .env-файлов.
// Отсутствующие файлы пропускаются.
func LoadEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load читает конфигурацию из окружения.
func Load() (*Config, error) {
	if err := LoadEnv(".env", ".env.local"); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.DB.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduling.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDBConfig оставлен для команд, которым нужна только БД (migrate).
func LoadDBConfig() (*DBConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.DB, nil
}
