package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	H3Resolution int
	RateLimit    int // requests per minute per IP
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development
func Load() *Config {
	// Missing .env is fine in production; real env vars win either way.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/territory.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:         port,
		DBPath:       dbPath,
		JWTSecret:    jwtSecret,
		H3Resolution: envInt("H3_RESOLUTION", 9),
		RateLimit:    envInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
