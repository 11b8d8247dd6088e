// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	JWTSecret      string
	BootstrapAdmin string
	RedisURL       string
	VoteRateLimit  int
	VoteRateWindow time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	AllowedOrigins []string
}

// ParseFlags reads flags first, then falls back to environment variables
// (optionally loaded from a .env file) and defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quorum", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	fs.StringVar(&cfg.BootstrapAdmin, "bootstrap-admin", "", "User ID granted the DefaultAdmin role at startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	v := newViper()

	if cfg.Port == 0 {
		port, err := strconv.Atoi(v.GetString("port"))
		if err != nil {
			return Config{}, errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v.GetString("database_url")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = v.GetString("database_type")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = v.GetString("jwt_secret")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.BootstrapAdmin == "" {
		cfg.BootstrapAdmin = v.GetString("bootstrap_admin")
	}

	// Optional infrastructure
	cfg.RedisURL = v.GetString("redis_url")
	cfg.VoteRateLimit = v.GetInt("vote_rate_limit")
	cfg.VoteRateWindow = v.GetDuration("vote_rate_window")
	if cfg.VoteRateLimit <= 0 || cfg.VoteRateWindow <= 0 {
		return Config{}, errors.New("VOTE_RATE_LIMIT and VOTE_RATE_WINDOW must be positive")
	}

	cfg.KafkaBrokers = splitList(v.GetString("kafka_brokers"))
	cfg.KafkaTopic = v.GetString("kafka_topic")
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "3318")
	v.SetDefault("database_type", "sqlite")
	v.SetDefault("vote_rate_limit", 10)
	v.SetDefault("vote_rate_window", time.Minute)
	v.SetDefault("kafka_topic", "ballot-events")
	v.SetDefault("allowed_origins", "*")
	v.AutomaticEnv()
	return v
}

// loadDotEnv loads .env into the process environment when present.
// Variables already set are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
