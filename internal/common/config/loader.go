// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Step names used as keys of Config.Steps.
const (
	StepCheckDuplicate   = "check_duplicate"
	StepCreateRecord     = "create_record"
	StepSendConfirmation = "send_confirmation"
	StepNotifyAdmin      = "notify_admin"
	StepScheduleTasks    = "schedule_tasks"
	StepUpdateStatus     = "update_status"
	StepGetStatus        = "get_status"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it
// and applies .env and environment overrides. A missing base file is not an
// error; defaults then describe an in-memory, simulated setup.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

// Default returns a validated configuration without reading any file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking from the working directory
// to the module root. Real environment variables always win.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			// Unset variables expand to "" so defaults and overrides apply.
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values the config files left empty from
// well-known environment variables.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty := func(dst *string, envKey string) {
		if *dst != "" {
			return
		}
		if val := os.Getenv(envKey); val != "" {
			*dst = val
		}
	}

	setIfEmpty(&cfg.Store.Backend, "INTAKE_STORE_BACKEND")
	setIfEmpty(&cfg.Store.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Store.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Store.Postgres.Host, "DB_HOST")
	setIfEmpty(&cfg.Store.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Store.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Store.SQLite.Path, "INTAKE_SQLITE_PATH")
	setIfEmpty(&cfg.Notifications.Channel, "INTAKE_NOTIFICATION_CHANNEL")
	setIfEmpty(&cfg.Notifications.AdminTopicARN, "INTAKE_ADMIN_TOPIC_ARN")
	setIfEmpty(&cfg.Notifications.AWS.Region, "AWS_REGION")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "student-intake"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
	}
	if cfg.Store.Namespace == "" {
		cfg.Store.Namespace = "studentIntake"
	}
	if cfg.Store.Postgres.Port == 0 {
		cfg.Store.Postgres.Port = 5432
	}
	if cfg.Store.Postgres.MaxConnections == 0 {
		cfg.Store.Postgres.MaxConnections = 10
	}
	if cfg.Store.Postgres.MaxIdle == 0 {
		cfg.Store.Postgres.MaxIdle = 2
	}
	if cfg.Store.Postgres.SSLMode == "" {
		cfg.Store.Postgres.SSLMode = "disable"
	}
	if cfg.Store.Postgres.Table == "" {
		cfg.Store.Postgres.Table = "intake_kv"
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = "data/intake.db"
	}

	if cfg.Notifications.Channel == "" {
		cfg.Notifications.Channel = ChannelSimulated
	}
	if cfg.Notifications.FromEmail == "" {
		cfg.Notifications.FromEmail = "admissions@brightfutureacademy.edu"
	}
	if cfg.Notifications.SchoolName == "" {
		cfg.Notifications.SchoolName = "Bright Future Academy"
	}
	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}

	if len(cfg.Scheduler.WeekendDays) == 0 {
		cfg.Scheduler.WeekendDays = []string{"saturday", "sunday"}
	}
	if cfg.Scheduler.ReviewOffsetDays == 0 {
		cfg.Scheduler.ReviewOffsetDays = 2
	}
	if cfg.Scheduler.DecisionOffsetDays == 0 {
		cfg.Scheduler.DecisionOffsetDays = 3
	}

	if cfg.Steps == nil {
		cfg.Steps = make(map[string]StepConfig)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if cfg.Store.Redis.Address == "" {
			return fmt.Errorf("store.redis.address is required")
		}
	case BackendPostgres:
		if cfg.Store.Postgres.Host == "" {
			return fmt.Errorf("store.postgres.host is required")
		}
		if cfg.Store.Postgres.Database == "" {
			return fmt.Errorf("store.postgres.database is required")
		}
		if cfg.Store.Postgres.User == "" {
			return fmt.Errorf("store.postgres.user is required")
		}
	case BackendSQLite:
		if cfg.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported store.backend %q", cfg.Store.Backend)
	}

	switch cfg.Notifications.Channel {
	case ChannelSimulated:
	case ChannelAWS:
		if cfg.Notifications.AdminTopicARN == "" {
			return fmt.Errorf("notifications.admin_topic_arn is required for the aws channel")
		}
	default:
		return fmt.Errorf("unsupported notifications.channel %q", cfg.Notifications.Channel)
	}

	if _, err := cfg.Scheduler.Weekend(); err != nil {
		return fmt.Errorf("scheduler.weekend_days: %w", err)
	}
	if cfg.Scheduler.ReviewOffsetDays < 0 || cfg.Scheduler.DecisionOffsetDays < 0 {
		return fmt.Errorf("scheduler offsets must not be negative")
	}

	for name, step := range cfg.Steps {
		if step.DelayMs < 0 {
			return fmt.Errorf("steps.%s.delay_ms must not be negative", name)
		}
	}
	return nil
}

// ParseWeekdays converts lower- or mixed-case English day names.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		out = append(out, day)
	}
	return out, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetStepDelay returns the simulated latency configured for a step, zero when unset.
func GetStepDelay(cfg *Config, step string) time.Duration {
	if s, ok := cfg.Steps[step]; ok {
		return GetDuration(s.DelayMs)
	}
	return 0
}
