package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Backend  BackendConfig  `yaml:"backend"`
	Auth     AuthConfig     `yaml:"auth"`
	Cache    CacheConfig    `yaml:"cache"`
	Wizard   WizardConfig   `yaml:"wizard"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
	CORS     CORSConfig     `yaml:"cors"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers                []string `yaml:"brokers"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic"`
	GroupID                string   `yaml:"group_id"`
}

// BackendConfig points at the marketplace REST API that owns reservations and rooms.
type BackendConfig struct {
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type CacheConfig struct {
	ReservationsTTLSeconds int `yaml:"reservations_ttl_seconds"`
	SearchTTLSeconds       int `yaml:"search_ttl_seconds"`
	MutationLockSeconds    int `yaml:"mutation_lock_seconds"`
}

func (c CacheConfig) ReservationsTTL() time.Duration {
	return time.Duration(c.ReservationsTTLSeconds) * time.Second
}

func (c CacheConfig) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

func (c CacheConfig) MutationLockTTL() time.Duration {
	return time.Duration(c.MutationLockSeconds) * time.Second
}

type WizardConfig struct {
	DraftTTLHours int `yaml:"draft_ttl_hours"`
	MaxPhotos     int `yaml:"max_photos"`
}

func (w WizardConfig) DraftTTL() time.Duration {
	return time.Duration(w.DraftTTLHours) * time.Hour
}

type WorkerConfig struct {
	DraftSweepMinutes        int `yaml:"draft_sweep_minutes"`
	InvalidateDebounceMillis int `yaml:"invalidate_debounce_millis"`
}

func (w WorkerConfig) DraftSweepInterval() time.Duration {
	return time.Duration(w.DraftSweepMinutes) * time.Minute
}

func (w WorkerConfig) InvalidateDebounce() time.Duration {
	return time.Duration(w.InvalidateDebounceMillis) * time.Millisecond
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 10
	}
	if c.Backend.RequestsPerSecond <= 0 {
		c.Backend.RequestsPerSecond = 20
	}
	if c.Backend.Burst <= 0 {
		c.Backend.Burst = 10
	}
	if c.Cache.ReservationsTTLSeconds <= 0 {
		c.Cache.ReservationsTTLSeconds = 60
	}
	if c.Cache.SearchTTLSeconds <= 0 {
		c.Cache.SearchTTLSeconds = 30
	}
	if c.Cache.MutationLockSeconds <= 0 {
		c.Cache.MutationLockSeconds = 30
	}
	if c.Wizard.DraftTTLHours <= 0 {
		c.Wizard.DraftTTLHours = 72
	}
	if c.Wizard.MaxPhotos <= 0 {
		c.Wizard.MaxPhotos = 20
	}
	if c.Worker.DraftSweepMinutes <= 0 {
		c.Worker.DraftSweepMinutes = 30
	}
	if c.Worker.InvalidateDebounceMillis <= 0 {
		c.Worker.InvalidateDebounceMillis = 500
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
