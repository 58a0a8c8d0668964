/*
config.go - Process configuration

PURPOSE:
  One Config value built at start-up from, in increasing precedence:
  1. Defaults
  2. A .env file in the working directory (optional)
  3. Environment variables
  4. Command-line flags (-port, -db, -driver, -floor-plan)

KEYS:
  APP_PORT                    HTTP port (8080)
  DB_DRIVER                   sqlite | postgres | memory (sqlite)
  DB_PATH                     SQLite file, ":memory:" allowed (reservations.db)
  DATABASE_URL                Postgres DSN, required for DB_DRIVER=postgres
  LOG_LEVEL, LOG_FORMAT       logrus level; text | json
  RESTAURANT_TZ               IANA zone for dates without offset (UTC)
  AMQP_URL, EVENTS_QUEUE      RabbitMQ; events are only logged when unset
  REDIS_ADDR/PASSWORD/DB      Shared rate-limit state; local limiter when unset
  RATE_LIMIT_ENABLED          (true)
  RATE_LIMIT_CAPACITY         Bucket size per client (60)
  RATE_LIMIT_REFILL_INTERVAL  One token per interval (1s)
  REMINDERS_ENABLED           (false)
  REMINDER_LEAD               How far ahead reminders go out (24h)
  REMINDER_INTERVAL           Scheduler tick and reminder window (15m)
  FLOOR_PLAN                  JSON floor plan installed on an empty store

SEE ALSO:
  - config/redis.go: Redis client
  - cmd/server/main.go: Wiring
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DBDriver    string
	DBPath      string
	DatabaseURL string

	LogLevel  string
	LogFormat string
	Location  *time.Location

	AMQPURL     string
	EventsQueue string

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Reminders ReminderConfig

	FloorPlan string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillInterval time.Duration
}

type ReminderConfig struct {
	Enabled  bool
	Lead     time.Duration
	Interval time.Duration
}

// Load builds the configuration. args are the command-line arguments
// without the program name.
func Load(args []string) (Config, error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:        envInt("APP_PORT", 8080),
		DBDriver:    envStr("DB_DRIVER", "sqlite"),
		DBPath:      envStr("DB_PATH", "reservations.db"),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFormat:   envStr("LOG_FORMAT", "text"),
		AMQPURL:     envStr("AMQP_URL", ""),
		EventsQueue: envStr("EVENTS_QUEUE", "reservation.events"),
		Redis: RedisConfig{
			Addr:     envStr("REDIS_ADDR", ""),
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
			RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		},
		Reminders: ReminderConfig{
			Enabled:  envBool("REMINDERS_ENABLED", false),
			Lead:     envDur("REMINDER_LEAD", 24*time.Hour),
			Interval: envDur("REMINDER_INTERVAL", 15*time.Minute),
		},
		FloorPlan: envStr("FLOOR_PLAN", ""),
	}
	tz := envStr("RESTAURANT_TZ", "UTC")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, `SQLite database path (":memory:" for in-memory)`)
	fs.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "storage driver: sqlite, postgres or memory")
	fs.StringVar(&cfg.FloorPlan, "floor-plan", cfg.FloorPlan, "JSON floor plan to install on an empty store")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid RESTAURANT_TZ %q: %w", tz, err)
	}
	cfg.Location = loc

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RateLimit.Capacity < 1 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be at least 1")
	}
	if c.RateLimit.RefillInterval <= 0 {
		return fmt.Errorf("RATE_LIMIT_REFILL_INTERVAL must be positive")
	}
	if c.Reminders.Enabled && (c.Reminders.Interval <= 0 || c.Reminders.Lead < 0) {
		return fmt.Errorf("invalid reminder schedule: lead %s, interval %s", c.Reminders.Lead, c.Reminders.Interval)
	}
	return nil
}

// ===== env helpers =====

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil {
		return dur
	}
	return d
}
