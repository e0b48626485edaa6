package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	MonthlyFeeCron string `mapstructure:"SCHEDULER_MONTHLY_FEE_CRON"`
	Timezone       string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	// MonthlyDueDay is the day of the month monthly fees fall due on.
	MonthlyDueDay int `mapstructure:"MONTHLY_DUE_DAY"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("MONTHLY_DUE_DAY", 10)
	viper.SetDefault("SCHEDULER_MONTHLY_FEE_CRON", "0 0 1 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Karachi")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.MonthlyDueDay < 1 || c.Business.MonthlyDueDay > 28 {
		return fmt.Errorf("MONTHLY_DUE_DAY must be between 1 and 28")
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// DSN returns the Postgres connection string.
func (c *DatabaseConfig) DSN() string {
	return c.URL
}

// RedisAddr returns the host:port the Redis client dials.
func (c *RedisConfig) RedisAddr() string {
	return c.Host + ":" + c.Port
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}
