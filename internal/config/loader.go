package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BOOKMIRROR_* environment variable
// overrides, and returns the final Config. The caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BOOKMIRROR_* environment variables
// and overwrites the corresponding Config fields when a variable is set.
// This lets operators inject secrets at deploy time without touching the
// TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Fliq.BaseURL, "BOOKMIRROR_FLIQ_BASE_URL")
	setStr(&cfg.Fliq.APIKey, "BOOKMIRROR_FLIQ_API_KEY")

	setStr(&cfg.Polymarket.GammaHost, "BOOKMIRROR_POLYMARKET_GAMMA_HOST")

	setStr(&cfg.Postgres.DSN, "BOOKMIRROR_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "BOOKMIRROR_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BOOKMIRROR_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BOOKMIRROR_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BOOKMIRROR_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BOOKMIRROR_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BOOKMIRROR_POSTGRES_SSL_MODE")
	setBool(&cfg.Postgres.RunMigrations, "BOOKMIRROR_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "BOOKMIRROR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BOOKMIRROR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BOOKMIRROR_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "BOOKMIRROR_REDIS_TLS_ENABLED")

	setStr(&cfg.S3.Endpoint, "BOOKMIRROR_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "BOOKMIRROR_S3_REGION")
	setStr(&cfg.S3.Bucket, "BOOKMIRROR_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "BOOKMIRROR_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "BOOKMIRROR_S3_SECRET_KEY")

	setDuration(&cfg.Poll.Interval, "BOOKMIRROR_POLL_INTERVAL")
	setDuration(&cfg.Sync.Interval, "BOOKMIRROR_SYNC_INTERVAL")

	setBool(&cfg.Matcher.Enabled, "BOOKMIRROR_MATCHER_ENABLED")
	setFloat64(&cfg.Matcher.MinScore, "BOOKMIRROR_MATCHER_MIN_SCORE")

	setInt(&cfg.Server.Port, "BOOKMIRROR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "BOOKMIRROR_SERVER_CORS_ORIGINS")

	setStr(&cfg.Mode, "BOOKMIRROR_MODE")
	setStr(&cfg.LogLevel, "BOOKMIRROR_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
