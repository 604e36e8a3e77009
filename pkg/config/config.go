package config

import (
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Paths Paths
	LLM   LLMConfig
	OCR   OCRConfig
}

// Paths locates the on-disk configuration and statement directories.
type Paths struct {
	ConfigDir     string // keyword lists, merchant_cache.json
	StatementsDir string // monthly folders of PDFs and produced CSVs
}

// LLMConfig configures the local language-model service.
type LLMConfig struct {
	BaseURL        string
	PrimaryModel   string
	SecondaryModel string
	MultiModel     bool
	ProbeTimeout   time.Duration
	CallTimeout    time.Duration
	Enabled        bool
}

// OCRConfig configures the image-based extraction fallback.
type OCRConfig struct {
	DPI      int
	Language string
	Timeout  time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Paths: Paths{
			ConfigDir:     getEnv("BANKAI_CONFIG_DIR", "config"),
			StatementsDir: getEnv("BANKAI_STATEMENTS_DIR", "statements"),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			PrimaryModel:   getEnv("BANKAI_PRIMARY_MODEL", "qwen2.5:14b"),
			SecondaryModel: getEnv("BANKAI_SECONDARY_MODEL", "dolphin-mistral"),
			MultiModel:     getEnvAsBool("BANKAI_MULTI_MODEL", true),
			ProbeTimeout:   getEnvAsDuration("BANKAI_LLM_PROBE_TIMEOUT", 2*time.Second),
			CallTimeout:    getEnvAsDuration("BANKAI_LLM_TIMEOUT", 10*time.Second),
			Enabled:        getEnvAsBool("BANKAI_LLM_ENABLED", true),
		},
		OCR: OCRConfig{
			DPI:      getEnvAsInt("BANKAI_OCR_DPI", 400),
			Language: getEnv("BANKAI_OCR_LANG", "eng"),
			Timeout:  getEnvAsDuration("BANKAI_OCR_TIMEOUT", 120*time.Second),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
