package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config collects everything the backend reads from the environment.
type Config struct {
	Port        string
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	UploadDir string
}

// Load reads .env if present and resolves the configuration. JWT_SECRET has
// no default on purpose.
func Load() (*Config, error) {
	// Missing .env is fine in containers; variables come from the runtime.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "5000"),
		DatabaseDSN:   getenv("DATABASE_DSN", "host=localhost user=user password=password dbname=chatvault port=5432 sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       0,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
