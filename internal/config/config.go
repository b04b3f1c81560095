package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup. It is built once in
// main and passed down explicitly; nothing in this package keeps state.
type Config struct {
	Port        string
	DSN         string
	JWTSecret   []byte
	JWTExpiry   time.Duration
	CORSOrigins []string
}

// Load reads .env (if present) and assembles a Config from the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: no .env file found, relying on system environment variables")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change_this_dev_secret"
		log.Println("WARNING: JWT_SECRET not set, using insecure development default")
	}

	expiry := 7 * 24 * time.Hour
	if raw := os.Getenv("JWT_EXPIRE"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			expiry = d
		} else {
			log.Printf("WARNING: invalid JWT_EXPIRE %q, keeping default: %v", raw, err)
		}
	}

	origins := []string{"http://localhost:5173"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		DSN:         getEnv("DB_DSN", "root:@tcp(127.0.0.1:3306)/soko?parseTime=true"),
		JWTSecret:   []byte(secret),
		JWTExpiry:   expiry,
		CORSOrigins: origins,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
