package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port     string
	DataFile string

	// DBDriver selects the storage backend: "json" (default) or "postgres".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	AdminUsername string
	AdminPassword string
}

// Load reads .env if present, then the environment, falling back to
// development defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Config.Load - no .env file, using environment")
	}

	return &Config{
		Port:          env("PORT", "8080"),
		DataFile:      env("DATA_FILE", "./data.json"),
		DBDriver:      env("DB_DRIVER", "json"),
		DBHost:        env("DB_HOST", "localhost"),
		DBPort:        env("DB_PORT", "5432"),
		DBUser:        env("DB_USER", "postgres"),
		DBPassword:    env("DB_PASSWORD", "postgres"),
		DBName:        env("DB_NAME", "wheelstore"),
		RedisAddr:     env("REDIS_ADDR", ""),
		SMTPHost:      env("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      env("SMTP_PORT", "587"),
		SMTPUser:      env("SMTP_USER", ""),
		SMTPPass:      env("SMTP_PASS", ""),
		AdminUsername: env("ADMIN_USERNAME", "admin"),
		AdminPassword: env("ADMIN_PASSWORD", ""),
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
