package main

import (
	"errors"
	"flag"
	"strconv"
	"strings"
	"time"

	"github.com/nlachan/movie-api/internal/validator"
)

const (
	driverMongo    = "mongo"
	driverPostgres = "postgres"
)

type dbConfig struct {
	dsn          string
	name         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  time.Duration
}

type rateLimitConfig struct {
	rps     float64
	burst   int
	enabled bool
}

type redisConfig struct {
	addr     string
	password string
	db       int
}

type smtp struct {
	host     string
	port     int
	username string
	password string
	sender   string
}

type config struct {
	port    int
	env     string
	db      dbConfig
	jwt     struct{ secret string }
	cors    struct{ trustedOrigins []string }
	limiter rateLimitConfig
	redis   redisConfig
	smtp    smtp
	metrics struct{ enabled bool }
}

// driver picks the store backend from the DSN scheme.
func (c dbConfig) driver() (string, error) {
	switch {
	case strings.HasPrefix(c.dsn, "mongodb://"), strings.HasPrefix(c.dsn, "mongodb+srv://"):
		return driverMongo, nil
	case strings.HasPrefix(c.dsn, "postgres://"), strings.HasPrefix(c.dsn, "postgresql://"):
		return driverPostgres, nil
	default:
		return "", errors.New("CONNECTION_URI: unsupported scheme, want mongodb:// or postgres://")
	}
}

// loadConfig builds the configuration from getenv and the command line flags.
// The bool result reports whether -version was given.
func loadConfig(args []string, getenv func(string) string) (config, bool, error) {
	var cfg config
	v := validator.New()

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	displayVersion := fs.Bool("version", false, "Display version and exit")
	fs.StringVar(&cfg.env, "env", readString(getenv, "APP_ENV", "development"), "Environment (development|staging|production)")
	if err := fs.Parse(args); err != nil {
		return cfg, false, err
	}
	if *displayVersion {
		return cfg, true, nil
	}

	cfg.port = readInt(getenv, "PORT", 8080, v)

	cfg.db.dsn = readString(getenv, "CONNECTION_URI", "")
	cfg.db.name = readString(getenv, "DB_NAME", "myflix")
	cfg.db.maxOpenConns = readInt(getenv, "DB_MAX_OPEN_CONNS", 25, v)
	cfg.db.maxIdleConns = readInt(getenv, "DB_MAX_IDLE_CONNS", 25, v)
	cfg.db.maxIdleTime = readDuration(getenv, "DB_MAX_IDLE_TIME", 15*time.Minute, v)

	cfg.jwt.secret = readString(getenv, "JWT_SECRET", "")
	cfg.cors.trustedOrigins = readCSV(getenv, "CORS_TRUSTED_ORIGINS", []string{})

	cfg.limiter.rps = readFloat(getenv, "LIMITER_RPS", 2, v)
	cfg.limiter.burst = readInt(getenv, "LIMITER_BURST", 4, v)
	cfg.limiter.enabled = readBool(getenv, "LIMITER_ENABLED", true, v)

	cfg.redis.addr = readString(getenv, "REDIS_ADDR", "")
	cfg.redis.password = readString(getenv, "REDIS_PASSWORD", "")
	cfg.redis.db = readInt(getenv, "REDIS_DB", 0, v)

	cfg.smtp.host = readString(getenv, "SMTP_HOST", "")
	cfg.smtp.port = readInt(getenv, "SMTP_PORT", 25, v)
	cfg.smtp.username = readString(getenv, "SMTP_USERNAME", "")
	cfg.smtp.password = readString(getenv, "SMTP_PASSWORD", "")
	cfg.smtp.sender = readString(getenv, "SMTP_SENDER", "myFlix <no-reply@myflix.local>")

	cfg.metrics.enabled = readBool(getenv, "METRICS_ENABLED", true, v)

	validateConfig(v, cfg)
	if !v.Valid() {
		msgs := make([]string, 0, len(v.Errors))
		for _, e := range v.Errors {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return cfg, false, errors.New("invalid configuration: " + strings.Join(msgs, "; "))
	}

	return cfg, false, nil
}

func validateConfig(v *validator.Validator, cfg config) {
	v.Check(cfg.port > 0 && cfg.port <= 65535, "PORT", "must be between 1 and 65535")
	v.Check(validator.In(cfg.env, "development", "staging", "production"), "APP_ENV", "must be development, staging or production")
	v.Check(cfg.db.dsn != "", "CONNECTION_URI", "must be provided")
	if cfg.db.dsn != "" {
		_, err := cfg.db.driver()
		v.Check(err == nil, "CONNECTION_URI", "must start with mongodb:// or postgres://")
	}
	v.Check(cfg.jwt.secret != "", "JWT_SECRET", "must be provided")
	if cfg.limiter.enabled {
		v.Check(cfg.limiter.rps > 0, "LIMITER_RPS", "must be greater than zero")
		v.Check(cfg.limiter.burst > 0, "LIMITER_BURST", "must be greater than zero")
	}
}

func readString(getenv func(string) string, key, defaultValue string) string {
	s := getenv(key)
	if s == "" {
		return defaultValue
	}
	return s
}

func readInt(getenv func(string) string, key string, defaultValue int, v *validator.Validator) int {
	n := getenv(key)
	if n == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(n)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}
	return i
}

func readFloat(getenv func(string) string, key string, defaultValue float64, v *validator.Validator) float64 {
	n := getenv(key)
	if n == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		v.AddError(key, "must be a number")
		return defaultValue
	}
	return f
}

func readBool(getenv func(string) string, key string, defaultValue bool, v *validator.Validator) bool {
	s := getenv(key)
	if s == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		v.AddError(key, "must be a boolean value")
		return defaultValue
	}
	return b
}

func readDuration(getenv func(string) string, key string, defaultValue time.Duration, v *validator.Validator) time.Duration {
	s := getenv(key)
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		v.AddError(key, "must be a duration such as 15m")
		return defaultValue
	}
	return d
}

func readCSV(getenv func(string) string, key string, defaultValue []string) []string {
	csv := getenv(key)
	if csv == "" {
		return defaultValue
	}

	parts := strings.Split(csv, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
