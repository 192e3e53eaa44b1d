// Package config loads every runtime knob from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the full configuration surface of the service.
type Config struct {
	Port     string
	LogLevel string

	// Pipeline limits
	MaxPages  int
	BatchSize int

	// Rasterization
	RasterBackend string // "poppler" or "mupdf"
	RasterDPI     int
	RasterFormat  string // "jpeg" or "png"
	RasterQuality int

	// Recognition
	OCRProvider    string // "tesseract", "tesseract-cli" or "openai"
	OCRLanguage    string
	OCRWhitelist   string
	OCRPageSegMode int
	ReuseWorkers   bool
	PageTimeout    time.Duration

	OpenAIAPIKey string
	OpenAIModel  string

	// HTTP surface
	MaxUploadMB int

	// Working directories
	WorkDir       string
	SweepEnabled  bool
	WorkdirMaxAge time.Duration

	// Skip OCR when the document already carries a text layer
	PreferNativeText bool
}

// LoadConfig reads configuration from the environment. A missing .env file
// is fine; every value has a default.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment defaults")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MaxPages:  getEnvInt("MAX_PAGES", 30),
		BatchSize: getEnvInt("BATCH_SIZE", 6),

		RasterBackend: getEnv("RASTER_BACKEND", "poppler"),
		RasterDPI:     getEnvInt("RASTER_DPI", 150),
		RasterFormat:  getEnv("RASTER_FORMAT", "jpeg"),
		RasterQuality: getEnvInt("RASTER_QUALITY", 85),

		OCRProvider:    getEnv("OCR_PROVIDER", "tesseract"),
		OCRLanguage:    getEnv("OCR_LANGUAGE", "eng"),
		OCRWhitelist:   getEnv("OCR_WHITELIST", ""),
		OCRPageSegMode: getEnvInt("OCR_PSM", 3),
		ReuseWorkers:   getEnvBool("OCR_REUSE_WORKERS", true),
		PageTimeout:    getEnvDuration("OCR_PAGE_TIMEOUT", 0),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 50),

		WorkDir:       getEnv("WORK_DIR", filepath.Join(os.TempDir(), "ocr-work")),
		SweepEnabled:  getEnvBool("WORKDIR_SWEEP", true),
		WorkdirMaxAge: getEnvDuration("WORKDIR_MAX_AGE", 2*time.Hour),

		PreferNativeText: getEnvBool("PREFER_NATIVE_TEXT", false),
	}

	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.MaxPages < 1 {
		cfg.MaxPages = 30
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean in environment, using default")
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration in environment, using default")
		return fallback
	}
	return d
}
