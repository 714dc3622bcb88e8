// Package config loads runtime settings from the environment, reading a
// .env file first when one is present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sakan811/no-kitty-cards-game/engine"
	"github.com/sakan811/no-kitty-cards-game/internal/logger"
)

// Config holds everything the relay and the terminal peer need.
type Config struct {
	Addr        string
	RelayURL    string
	JWTSecret   string
	TokenTTL    time.Duration
	RedisURL    string // empty disables the action log
	DatabaseURL string // empty disables snapshot persistence
	LogLevel    string
	LogJSON     bool
	Rules       engine.HouseRules
}

// Load reads .env (if any) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Get().Warnf("config: reading .env: %v", err)
	}

	rules := engine.DefaultHouseRules()
	rules.NumberCopies = uint8(getInt("NKC_NUMBER_COPIES", int(rules.NumberCopies)))
	rules.AssistCopies = uint8(getInt("NKC_ASSIST_COPIES", int(rules.AssistCopies)))
	rules.DrawLimitPerTurn = uint8(getInt("NKC_DRAW_LIMIT", int(rules.DrawLimitPerTurn)))

	return Config{
		Addr:        getenv("NKC_ADDR", ":8080"),
		RelayURL:    getenv("NKC_RELAY_URL", "http://localhost:8080"),
		JWTSecret:   getenv("NKC_JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:    getDuration("NKC_TOKEN_TTL", 2*time.Hour),
		RedisURL:    os.Getenv("NKC_REDIS_URL"),
		DatabaseURL: os.Getenv("NKC_DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_FORMAT") == "json",
		Rules:       rules,
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 255 {
		logger.Get().Warnf("config: %s=%q is not a count in 0..255, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Get().Warnf("config: %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}
