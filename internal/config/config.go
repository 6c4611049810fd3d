package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the server configuration, read from the environment.
type Config struct {
	Addr           string
	DBPath         string
	JWTSecret      string
	GoogleClientID string
	AllowedDomain  string
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Addr:           getEnv("CAMPUSHARE_ADDR", ":8080"),
		DBPath:         getEnv("CAMPUSHARE_DB", "campushare.sqlite3"),
		JWTSecret:      getEnv("CAMPUSHARE_JWT_SECRET", ""),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		AllowedDomain:  getEnv("ALLOWED_EMAIL_DOMAIN", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
