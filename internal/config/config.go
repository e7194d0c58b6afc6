package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port           int      `mapstructure:"port"`
	DatabaseDriver string   `mapstructure:"database_driver"` // sqlite | postgres
	DatabasePath   string   `mapstructure:"database_path"`   // sqlite file
	DatabaseURL    string   `mapstructure:"database_url"`    // postgres DSN
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Gate settings. WhitelistPrefixes are the in-scope path prefixes exempt
	// from credential checks; loaded once at process start.
	WhitelistPrefixes []string `mapstructure:"whitelist_prefixes"`

	// Bearer-token fallback. Mode selects the validator consulted when no
	// X-Forwarded-Email is present: "" (disabled) | "apikey" | "jwt".
	KeyValidatorMode string `mapstructure:"key_validator_mode"`
	JWTSecret        string `mapstructure:"jwt_secret"`

	// Platform / license. PlatformType "open-source" disables the license
	// branch entirely; "cloud" and "enterprise" consult the license checker
	// before any bearer-token validation.
	PlatformType string `mapstructure:"platform_type"`
	LicenseKey   string `mapstructure:"license_key"`

	RequestTimeoutSec  int `mapstructure:"request_timeout_sec"`  // HTTP read/write; 0 = server default
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec"` // graceful shutdown wait

	// Tracing (OTLP). Empty endpoint disables tracing.
	TracingEndpoint     string  `mapstructure:"tracing_endpoint"`
	TracingSamplingRate float64 `mapstructure:"tracing_sampling_rate"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/flowgrid/")
	viper.AddConfigPath("$HOME/.flowgrid")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("port", 8080)
	viper.SetDefault("database_driver", "sqlite")
	viper.SetDefault("database_path", "./flowgrid.db")
	viper.SetDefault("database_url", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("whitelist_prefixes", []string{
		"/api/v1/version",
		"/api/v1/health",
		"/api/v1/marketplaces/",
		"/api/v1/public/",
	})
	viper.SetDefault("key_validator_mode", "")
	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("platform_type", "open-source")
	viper.SetDefault("license_key", "")
	viper.SetDefault("request_timeout_sec", 30)
	viper.SetDefault("shutdown_timeout_sec", 15)
	viper.SetDefault("tracing_endpoint", "")
	viper.SetDefault("tracing_sampling_rate", 1.0)

	// Environment variables
	viper.SetEnvPrefix("FLOWGRID")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
