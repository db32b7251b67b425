package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is built once in main and
// passed by reference into constructors; nothing below the boundary reads
// the environment directly.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
}

// DatabaseConfig holds storage configuration. The DSN scheme selects the
// driver: postgres:// uses pgx, anything else is treated as a SQLite path.
type DatabaseConfig struct {
	DSN string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string
	UploadDir string
}

// OCRConfig configures the extraction backends of the OCR source chain.
type OCRConfig struct {
	HTTPEndpoint string // OpenAI-style chat/completions endpoint
	Model        string
	Prompt       string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int

	GeminiAPIKey string
	GeminiModel  string

	Command string // local fallback; {image} is substituted with the file path
}

// LLMConfig configures the remote completion provider used by enrichment.
type LLMConfig struct {
	Provider    string // "http" or "gemini"
	Endpoint    string
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int

	GeminiAPIKey string
	GeminiModel  string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	geminiKey := getEnv("GEMINI_API_KEY", "")
	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("DB_URL", "catalog.db"),
		},
		Server: ServerConfig{
			Addr:      getEnv("HTTP_ADDR", ":8080"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		OCR: OCRConfig{
			HTTPEndpoint: getEnv("VINYL_OCR_HTTP_URL", ""),
			Model:        getEnv("VINYL_OCR_MODEL", "nanonets/Nanonets-OCR2-3B"),
			Prompt:       getEnv("VINYL_OCR_PROMPT", ""),
			Temperature:  getEnvAsFloat32("VINYL_OCR_TEMPERATURE", 0.0),
			MaxTokens:    getEnvAsInt("VINYL_OCR_MAX_TOKENS", 15000),
			Timeout:      getEnvAsDuration("VINYL_OCR_TIMEOUT", 60*time.Second),
			MaxRetries:   getEnvAsInt("VINYL_OCR_MAX_RETRIES", 2),
			GeminiAPIKey: geminiKey,
			GeminiModel:  getEnv("VINYL_OCR_GEMINI_MODEL", "gemini-1.5-flash"),
			Command:      getEnv("VINYL_OCR_COMMAND", ""),
		},
		LLM: LLMConfig{
			Provider:     getEnv("LLM_PROVIDER", "http"),
			Endpoint:     getEnv("LLM_ENDPOINT", ""),
			Model:        getEnv("LLM_MODEL", "beatrove-local-metadata"),
			Temperature:  getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			TopP:         getEnvAsFloat32("LLM_TOP_P", 1.0),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 512),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxRetries:   getEnvAsInt("LLM_MAX_RETRIES", 2),
			GeminiAPIKey: geminiKey,
			GeminiModel:  getEnv("GEMINI_LLM_MODEL", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
