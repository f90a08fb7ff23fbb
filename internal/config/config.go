package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Backend bridge
	BackendURL     string `mapstructure:"BACKEND_URL"`
	RequestTimeout int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	// Operator scope defaults (overridden by the login response)
	TenantID string `mapstructure:"TENANT_ID"`
	BranchID string `mapstructure:"BRANCH_ID"`

	// Session persistence (client-side storage analog)
	SessionFile string `mapstructure:"SESSION_FILE"`

	// Business policy: whether the opening float is a fixed house constant
	// or entered by the operator per shift. Which applies is decided by
	// business policy, not code.
	OpeningFloat      float64 `mapstructure:"OPENING_FLOAT"`
	OpeningFloatFixed bool    `mapstructure:"OPENING_FLOAT_FIXED"`

	// UI
	PageSize int `mapstructure:"PAGE_SIZE"`

	Env string `mapstructure:"APP_ENV"` // development | production
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	viper.SetDefault("TENANT_ID", "ELTITI1")
	viper.SetDefault("BRANCH_ID", "SUCURSAL1")
	viper.SetDefault("SESSION_FILE", ".restopos-session.json")
	viper.SetDefault("OPENING_FLOAT", 300)
	viper.SetDefault("OPENING_FLOAT_FIXED", true)
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("APP_ENV", "development")

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
