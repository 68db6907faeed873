// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main intake configuration struct.
type Config struct {
	App           AppConfig             `mapstructure:"app"`
	Store         StoreConfig           `mapstructure:"store"`
	Notifications NotificationConfig    `mapstructure:"notifications"`
	Scheduler     SchedulerConfig       `mapstructure:"scheduler"`
	Steps         map[string]StepConfig `mapstructure:"steps"`
	Logging       LoggingConfig         `mapstructure:"logging"`
	Observability ObservabilityConfig   `mapstructure:"observability"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Store backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// StoreConfig selects the key-value namespace holding the applications and
// auditLog collections.
type StoreConfig struct {
	Backend   string         `mapstructure:"backend"`
	Namespace string         `mapstructure:"namespace"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
	Redis     RedisConfig    `mapstructure:"redis"`
	SQLite    SQLiteConfig   `mapstructure:"sqlite"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	Table          string `mapstructure:"table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// Notification channels
const (
	ChannelSimulated = "simulated"
	ChannelAWS       = "aws"
)

// NotificationConfig holds settings for the notifier.
type NotificationConfig struct {
	Channel       string `mapstructure:"channel"`
	FromEmail     string `mapstructure:"from_email"`
	AdminTopicARN string `mapstructure:"admin_topic_arn"`
	SchoolName    string `mapstructure:"school_name"`
	AWS           struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// SchedulerConfig holds follow-up task settings.
type SchedulerConfig struct {
	WeekendDays        []string `mapstructure:"weekend_days"`
	ReviewOffsetDays   int      `mapstructure:"review_offset_days"`
	DecisionOffsetDays int      `mapstructure:"decision_offset_days"`
}

// Weekend returns the configured weekend days.
func (s SchedulerConfig) Weekend() ([]time.Weekday, error) {
	return ParseWeekdays(s.WeekendDays)
}

// StepConfig holds per-step settings of the pipeline.
type StepConfig struct {
	DelayMs int `mapstructure:"delay_ms"` // simulated latency, milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds tracing and metrics settings.
type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	RegisterGlobal bool   `mapstructure:"register_global"`
}
