package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Env                string
	DatabaseURL        string
	LLMProvider        string
	LLMModel           string
	OpenAIAPIKey       string
	ExtractionStrategy string // "pattern" or "model"
	PriceThresholdPct  float64
	ProbableWindowDays int
	PollIntervalSec    int
	WorkerConcurrency  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Env:                normalizeEnv(getEnv("ENV", "dev")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		LLMModel:           getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		ExtractionStrategy: normalizeStrategy(getEnv("EXTRACTION_STRATEGY", "pattern")),
		PriceThresholdPct:  getEnvFloat("PRICE_INCREASE_THRESHOLD_PCT", 20.0),
		ProbableWindowDays: getEnvInt("PROBABLE_DUPLICATE_WINDOW_DAYS", 2),
		PollIntervalSec:    getEnvInt("SCAN_POLL_INTERVAL_SECONDS", 5),
		WorkerConcurrency:  getEnvInt("SCAN_WORKER_CONCURRENCY", 4),
	}
}

// UseModelExtraction reports whether the model-assisted strategy is selected.
func (c Config) UseModelExtraction() bool {
	return c.ExtractionStrategy == "model"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return parsed
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStrategy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "model", "model_assisted", "llm":
		return "model"
	default:
		return "pattern"
	}
}
