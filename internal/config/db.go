package config

import (
	"fmt"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver          string `env:"DB_DRIVER" envDefault:"postgres"`
	Host            string `env:"DB_HOST" envDefault:"postgres"`
	Port            int    `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"scheduler"`
	Password        string `env:"DB_PASSWORD" envDefault:"scheduler"`
	Name            string `env:"DB_NAME" envDefault:"scheduler_db"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone        string `env:"DB_TIMEZONE" envDefault:"UTC"`
	SQLitePath      string `env:"DB_SQLITE_PATH" envDefault:"scheduler.db"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifeTime int    `env:"DB_CONN_MAX_LIFETIME_MIN" envDefault:"30"` // минут

	// Включает EXCLUDE-ограничения на пересечение расписаний (только Postgres).
	ExclusionConstraints bool `env:"DB_EXCLUSION_CONSTRAINTS" envDefault:"false"`
}

// DSN собирает строку подключения для Postgres.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}

func (c DBConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifeTime) * time.Minute
}

func (c DBConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		// минимальная валидация
		if c.Host == "" || c.User == "" || c.Name == "" {
			return fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("invalid DB config: sqlite path must not be empty")
		}
	default:
		return fmt.Errorf("invalid DB config: unknown driver %q", c.Driver)
	}
	return nil
}
