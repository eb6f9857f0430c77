package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=furniture port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
	minJWTSecretLength = 32
)

type Config struct {
	Env             string
	HTTPPort        string
	DatabaseDSN     string
	JWTSecret       string
	JWTTTL          time.Duration
	CORSOrigins     string
	NATSURL         string // empty disables order events
	MetricsEnabled  bool
	LowStockDefault float64 // used when a supplier product has no threshold of its own
}

// Load reads .env (if present), an optional config file named by CONFIG_FILE,
// and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "8h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOW_STOCK_DEFAULT", 0)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env:             v.GetString("APP_ENV"),
		HTTPPort:        v.GetString("HTTP_PORT"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		CORSOrigins:     v.GetString("CORS_ALLOWED_ORIGINS"),
		NATSURL:         v.GetString("NATS_URL"),
		MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
		LowStockDefault: v.GetFloat64("LOW_STOCK_DEFAULT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.DatabaseDSN == defaultDSN {
		slog.Warn("DATABASE_DSN is using the local default; set it for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		slog.Warn("CORS_ALLOWED_ORIGINS is using the local default; set your own domain for production")
	}
	return nil
}

// AllowedOrigins returns the comma separated CORS origins, trimmed.
func (c *Config) AllowedOrigins() string {
	origins := strings.Split(c.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return strings.Join(origins, ",")
}
