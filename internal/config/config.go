package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	LogLevel      string
	ShutdownGrace time.Duration
}

// Load reads .env if present, then the environment. Every field has a
// development default; DATABASE_URL empty selects the in-memory repo.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET", "dev-secret-change-me"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		ShutdownGrace: getDuration("SHUTDOWN_GRACE", 10*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
