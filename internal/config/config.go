package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// OpenAI Assistants API
	OpenAIAPIKey      string
	OpenAIAssistantID string
	OpenAIBaseURL     string
	OpenAIBetaHeader  string

	// Run polling
	PollInterval    time.Duration
	PollMaxAttempts int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               getEnvOrDefault("ENV", "development"),
		OpenAIAPIKey:      mustGetEnv("OPENAI_API_KEY"),
		OpenAIAssistantID: mustGetEnv("OPENAI_ASSISTANT_ID"),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIBetaHeader:  getEnvOrDefault("OPENAI_BETA_HEADER", "assistants=v2"),
		PollInterval:      getEnvAsDurationOrDefault("POLL_INTERVAL_MS", time.Second),
		PollMaxAttempts:   getEnvAsIntOrDefault("POLL_MAX_ATTEMPTS", 30),
		FrontendURL:       getEnvOrDefault("FRONTEND_URL", "*"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

// getEnvAsDurationOrDefault reads a millisecond count from the environment.
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return time.Duration(n) * time.Millisecond
}
