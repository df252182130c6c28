package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	JWTSecret     string
	DefaultServer string
	NATSURL       string
	AMQPURL       string
	MenuFile      string
	CORSOrigins   []string
	TableCount    int
	TableSeats    int
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8081"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		DefaultServer: getEnv("DEFAULT_SERVER", "Server"),
		NATSURL:       getEnv("NATS_URL", ""),
		AMQPURL:       getEnv("AMQP_URL", ""),
		MenuFile:      getEnv("MENU_FILE", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		TableCount:    getEnvInt("TABLE_COUNT", 12),
		TableSeats:    getEnvInt("TABLE_SEATS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt falls back on missing, malformed or non-positive values.
func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
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
