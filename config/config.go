package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"peer-delivery-api/logger"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Log       logger.Config
	Notify    NotifyConfig
	Lifecycle LifecycleConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig describes the SQLite store
type DatabaseConfig struct {
	Path          string // file path, or ":memory:"
	BusyTimeout   time.Duration
	LogLevel      string // silent, error, warn, info
	SlowThreshold time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// NotifyConfig sizes the notification dispatch queue
type NotifyConfig struct {
	QueueSize int
}

// LifecycleConfig toggles the stricter readings of two order transitions
type LifecycleConfig struct {
	StrictOnTheWay bool // require the assigned partner for ON_THE_WAY
	StrictCancel   bool // refuse to cancel DELIVERED/CANCELLED orders
}

// AdminConfig seeds an administrator account at startup when Email is set
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

const devJWTSecret = "peer_delivery_dev_secret"

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables with DELIVERY_ prefix (e.g., DELIVERY_DATABASE_PATH)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DELIVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Path:          v.GetString("database.path"),
			BusyTimeout:   v.GetDuration("database.busy_timeout"),
			LogLevel:      v.GetString("database.log_level"),
			SlowThreshold: v.GetDuration("database.slow_threshold"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Notify: NotifyConfig{
			QueueSize: v.GetInt("notify.queue_size"),
		},
		Lifecycle: LifecycleConfig{
			StrictOnTheWay: v.GetBool("lifecycle.strict_on_the_way"),
			StrictCancel:   v.GetBool("lifecycle.strict_cancel"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
			Name:     v.GetString("admin.name"),
		},
	}

	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "peer-delivery-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/peer_delivery.db"
	}
	if cfg.Database.BusyTimeout == 0 {
		cfg.Database.BusyTimeout = 5 * time.Second
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}
	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		cfg.JWT.Secret = devJWTSecret
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.IsProduction() {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	cfg.Log.Service = cfg.App.Name
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 256
	}
	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrator"
	}
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required in production (DELIVERY_JWT_SECRET)")
	}
	if c.IsProduction() && c.JWT.Secret == devJWTSecret {
		return errors.New("the development jwt secret cannot be used in production")
	}
	if c.Notify.QueueSize < 0 {
		return fmt.Errorf("notify queue size must be positive, got %d", c.Notify.QueueSize)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 6 {
		return errors.New("admin password must be at least 6 characters")
	}
	return nil
}

// IsProduction reports whether the app runs with env=production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
