package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Security SecurityConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SecurityConfig struct {
	EncryptionSecret string
	JwtSecret        string
}

type AIConfig struct {
	ServiceURL      string // Base URL of the external generation service
	DefaultProvider string // "gemini*" or "grok*" family
	DailyLimit      int    // Chat turns per user per day
	RateLimitPerMin int    // Per-user requests/minute on the message route
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Security: SecurityConfig{
			EncryptionSecret: getEnv("API_KEY_ENCRYPTION_SECRET", ""),
			JwtSecret:        getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			ServiceURL:      getEnv("AI_CORE_SERVICE_URL", "http://localhost:8000"),
			DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "gemini"),
			DailyLimit:      getEnvAsInt("AI_DAILY_LIMIT", 50),
			RateLimitPerMin: getEnvAsInt("CHAT_RATE_LIMIT_PER_MIN", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
