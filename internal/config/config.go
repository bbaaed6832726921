package config

import (
	"time"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Server listening address (e.g. ":8080")
 * @property {string} mode - Application mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, or "console"
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Circuit breaker tuning for the external collaborators
 * @property {int} failure_threshold - Consecutive failures before opening
 * @property {int} reset_timeout_seconds - Open cooldown before a half-open probe
 */
type BreakerConfig struct {
	FailureThreshold    int `mapstructure:"failure_threshold"`
	ResetTimeoutSeconds int `mapstructure:"reset_timeout_seconds"`
}

/**
 * Orchestration engine tuning
 * @property {int} collaborator_timeout_seconds - Per-collaborator call budget
 * @property {int} maintenance_interval_seconds - Period of the maintenance workflows
 * @property {int} health_poll_interval_seconds - Period of per-component health polling
 * @property {int} event_retention_minutes - Cleanup task prunes events older than this
 */
type EngineConfig struct {
	CollaboratorTimeoutSeconds int `mapstructure:"collaborator_timeout_seconds"`
	MaintenanceIntervalSeconds int `mapstructure:"maintenance_interval_seconds"`
	HealthPollIntervalSeconds  int `mapstructure:"health_poll_interval_seconds"`
	EventRetentionMinutes      int `mapstructure:"event_retention_minutes"`
}

type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Breaker BreakerConfig `mapstructure:"breaker"`
	Engine  EngineConfig  `mapstructure:"engine"`
	// ComponentsFile optionally preloads the registry at server start.
	ComponentsFile string `mapstructure:"components_file"`
}

/**
 * Load application configuration from YAML file
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Breaker.FailureThreshold <= 0 {
		cfg.Breaker.FailureThreshold = 5
	}
	if cfg.Breaker.ResetTimeoutSeconds <= 0 {
		cfg.Breaker.ResetTimeoutSeconds = 60
	}
	if cfg.Engine.CollaboratorTimeoutSeconds <= 0 {
		cfg.Engine.CollaboratorTimeoutSeconds = 30
	}
	if cfg.Engine.MaintenanceIntervalSeconds <= 0 {
		cfg.Engine.MaintenanceIntervalSeconds = 300
	}
	if cfg.Engine.HealthPollIntervalSeconds <= 0 {
		cfg.Engine.HealthPollIntervalSeconds = 10
	}
	if cfg.Engine.EventRetentionMinutes <= 0 {
		cfg.Engine.EventRetentionMinutes = 60
	}
	return cfg
}

// CollaboratorTimeout returns the per-collaborator call budget.
func (c *AppConfig) CollaboratorTimeout() time.Duration {
	return time.Duration(c.Engine.CollaboratorTimeoutSeconds) * time.Second
}

// MaintenanceInterval returns the maintenance workflow period.
func (c *AppConfig) MaintenanceInterval() time.Duration {
	return time.Duration(c.Engine.MaintenanceIntervalSeconds) * time.Second
}

// HealthPollInterval returns the per-component health polling period.
func (c *AppConfig) HealthPollInterval() time.Duration {
	return time.Duration(c.Engine.HealthPollIntervalSeconds) * time.Second
}

// EventRetention returns how long the cleanup task keeps events.
func (c *AppConfig) EventRetention() time.Duration {
	return time.Duration(c.Engine.EventRetentionMinutes) * time.Minute
}

// BreakerResetTimeout returns the breaker cooldown.
func (c *AppConfig) BreakerResetTimeout() time.Duration {
	return time.Duration(c.Breaker.ResetTimeoutSeconds) * time.Second
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
