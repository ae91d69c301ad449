package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config carries every tunable of the webhook subsystem. Values come
 * from the environment, optionally seeded by a .env file; each has a
 * default so a bare environment still boots against local Redis.
 */

type Config struct {
	Port          string `mapstructure:"PORT"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	PartnersFile  string `mapstructure:"PARTNERS_FILE"`
	OperatorToken string `mapstructure:"OPERATOR_TOKEN"`

	SchedulerIntervalSeconds int `mapstructure:"SCHEDULER_INTERVAL_SECONDS"`
	WorkerPoolSize           int `mapstructure:"WORKER_POOL_SIZE"`
	BatchLimit               int `mapstructure:"BATCH_LIMIT"`
	MaxAttempts              int `mapstructure:"MAX_ATTEMPTS"`
	ToleranceSeconds         int `mapstructure:"TOLERANCE_SECONDS"`
}

func GetConfig() (*Config, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PARTNERS_FILE", "partners.yaml")
	viper.SetDefault("OPERATOR_TOKEN", "")
	viper.SetDefault("SCHEDULER_INTERVAL_SECONDS", 15)
	viper.SetDefault("WORKER_POOL_SIZE", 10)
	viper.SetDefault("BATCH_LIMIT", 50)
	viper.SetDefault("MAX_ATTEMPTS", 6)
	viper.SetDefault("TOLERANCE_SECONDS", 300)

	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		// A .env file is optional; the environment alone is enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	return &config, nil
}

// GetSchedulerInterval returns the scheduler tick interval
func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerIntervalSeconds) * time.Second
}

// GetTolerance returns the signature tolerance window
func (c *Config) GetTolerance() time.Duration {
	return time.Duration(c.ToleranceSeconds) * time.Second
}
