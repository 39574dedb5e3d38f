package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	LogFile                 string        `mapstructure:"LOG_FILE"`
	LogMaxSizeMB            int           `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups           int           `mapstructure:"LOG_MAX_BACKUPS"`
	CORSOrigins             []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS            float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout          time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit               string        `mapstructure:"BODY_LIMIT"`
	ClinicTimezone          string        `mapstructure:"CLINIC_TIMEZONE"`
	EnforceVisitTransitions bool          `mapstructure:"CLINIC_ENFORCE_VISIT_TRANSITIONS"`
	SeedDemoPatients        int           `mapstructure:"SEED_DEMO_PATIENTS"`
}

var keys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"LOG_FILE",
	"LOG_MAX_SIZE_MB",
	"LOG_MAX_BACKUPS",
	"CORS_ORIGINS",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT",
	"BODY_LIMIT",
	"CLINIC_TIMEZONE",
	"CLINIC_ENFORCE_VISIT_TRANSITIONS",
	"SEED_DEMO_PATIENTS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("CLINIC_TIMEZONE", "Local")
	v.SetDefault("CLINIC_ENFORCE_VISIT_TRANSITIONS", false)
	v.SetDefault("SEED_DEMO_PATIENTS", 0)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
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

// Location resolves CLINIC_TIMEZONE. "Local" and "" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ClinicTimezone == "" || c.ClinicTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.ClinicTimezone)
}

// BodyLimitBytes parses BODY_LIMIT ("512K", "1M", "2G" or a byte count).
func (c *Config) BodyLimitBytes() (int64, error) {
	return parseSize(c.BodyLimit)
}

// Validate checks that the configuration is usable before the server starts.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("CLINIC_TIMEZONE %q is not a known time zone: %w", c.ClinicTimezone, err)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimitRPS)
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", c.RateLimitBurst)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, err := c.BodyLimitBytes(); err != nil {
		return fmt.Errorf("BODY_LIMIT: %w", err)
	}
	if c.SeedDemoPatients < 0 {
		return fmt.Errorf("SEED_DEMO_PATIENTS must not be negative, got %d", c.SeedDemoPatients)
	}
	return nil
}

// parseSize parses a human-readable size string (e.g. "1M", "512K", "10G")
// into a number of bytes.
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "G") || strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
	case strings.HasSuffix(s, "M") || strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
	case strings.HasSuffix(s, "K") || strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
	}
	s = strings.TrimRight(s, "GMKB")

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", n)
	}
	return n * multiplier, nil
}
