package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Detector  DetectorConfig
	Storage   StorageConfig
	Converter ConverterConfig
	AI        AIConfig
	Server    ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is "postgres" (default) or "sqlite"
	Driver     string
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	SSLMode    string
	SQLitePath string
	Silent     bool
}

// DetectorConfig holds settings for the remote defect-detection service
type DetectorConfig struct {
	URL                 string
	SingleTimeout       time.Duration
	BatchTimeout        time.Duration
	MaxAttempts         int
	FallbackMaxAttempts int
	BaseBackoff         time.Duration
	ItemDelay           time.Duration
}

// StorageConfig selects and configures the blob store.
// When S3Bucket is empty, blobs are written under LocalDir and served by the API itself.
type StorageConfig struct {
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3Prefix     string
	PublicURL    string
	LocalDir     string
	LocalBaseURL string
}

// ConverterConfig holds DOCX to PDF conversion settings
type ConverterConfig struct {
	SofficePath     string
	Timeout         time.Duration
	DisableFallback bool
}

// AIConfig holds settings for the narrative summary model
type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	AllowedOrigins []string
	PublicBaseURL  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	port := getEnv("PORT", "8000")

	return &Config{
		NodeEnv:   getEnv("APP_ENV", "development"),
		Port:      port,
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "edaa"),
			SSLMode:    getEnv("PG_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "./edaa.db"),
			Silent:     getEnv("DB_SILENT", "false") == "true",
		},
		Detector: DetectorConfig{
			URL:                 strings.TrimRight(getEnv("HF_SPACE_URL", "https://symmetrixs-edaa.hf.space"), "/"),
			SingleTimeout:       getDuration("DETECTOR_TIMEOUT", 120*time.Second),
			BatchTimeout:        getDuration("DETECTOR_BATCH_TIMEOUT", 300*time.Second),
			MaxAttempts:         getInt("DETECTOR_MAX_ATTEMPTS", 3),
			FallbackMaxAttempts: getInt("DETECTOR_FALLBACK_ATTEMPTS", 2),
			BaseBackoff:         getDuration("DETECTOR_BACKOFF", 10*time.Second),
			ItemDelay:           getDuration("DETECTOR_ITEM_DELAY", 2*time.Second),
		},
		Storage: StorageConfig{
			S3Bucket:     os.Getenv("S3_BUCKET"),
			S3Region:     getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:   os.Getenv("S3_ENDPOINT"),
			S3Prefix:     os.Getenv("S3_PREFIX"),
			PublicURL:    os.Getenv("S3_PUBLIC_URL"),
			LocalDir:     getEnv("STORAGE_DIR", "./storage"),
			LocalBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/files"),
		},
		Converter: ConverterConfig{
			SofficePath:     os.Getenv("SOFFICE_PATH"),
			Timeout:         getDuration("CONVERTER_TIMEOUT", 30*time.Second),
			DisableFallback: getEnv("CONVERTER_FALLBACK", "true") == "false",
		},
		AI: AIConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  os.Getenv("GEMINI_MODEL"),
		},
		Server: ServerConfig{
			AllowedOrigins: getList("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174"),
			PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// getList splits a comma separated value, dropping blanks
func getList(key, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getDuration accepts Go duration strings ("90s") or plain seconds ("90")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
