package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string   `mapstructure:"PORT"`
	Env               string   `mapstructure:"ENV"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret         string   `mapstructure:"JWT_SECRET"`
	RiskThresholdLow  float64  `mapstructure:"RISK_THRESHOLD_LOW"`
	RiskThresholdHigh float64  `mapstructure:"RISK_THRESHOLD_HIGH"`
	ModelVersion      string   `mapstructure:"MODEL_VERSION"`
	ReportsDir        string   `mapstructure:"REPORTS_DIR"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS      float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int      `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit         string   `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("RISK_THRESHOLD_LOW", 0.33)
	v.SetDefault("RISK_THRESHOLD_HIGH", 0.66)
	v.SetDefault("MODEL_VERSION", "1.0.0")
	v.SetDefault("REPORTS_DIR", "./reports")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("RISK_THRESHOLD_LOW")
	v.BindEnv("RISK_THRESHOLD_HIGH")
	v.BindEnv("MODEL_VERSION")
	v.BindEnv("REPORTS_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Threshold ordering
// is a startup-fatal configuration error: the label classifier would produce
// contradictory results if low >= high, so the server refuses to start
// rather than surface it per-request.
func (c *Config) Validate() error {
	if c.RiskThresholdLow >= c.RiskThresholdHigh {
		return fmt.Errorf(
			"RISK_THRESHOLD_LOW (%v) must be less than RISK_THRESHOLD_HIGH (%v)",
			c.RiskThresholdLow, c.RiskThresholdHigh)
	}
	if c.RiskThresholdLow < 0 || c.RiskThresholdHigh > 1 {
		return fmt.Errorf("risk thresholds must lie within [0,1], got %v/%v",
			c.RiskThresholdLow, c.RiskThresholdHigh)
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
	}

	if c.ReportsDir == "" {
		return fmt.Errorf("REPORTS_DIR must not be empty")
	}

	return nil
}
