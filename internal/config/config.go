package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadBytes is the total attachment payload allowed per request.
const DefaultMaxUploadBytes = 10 << 20 // 10MB

// defaultAllowedExtensions lists the file extensions accepted for query
// attachments, lowercase without the leading dot.
var defaultAllowedExtensions = []string{
	"pdf", "png", "jpg", "jpeg", "xlsx", "xls", "csv", "txt", "doc", "docx",
}

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file path when DBDriver == "sqlite"

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Attachments
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions map[string]bool
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "querydesk"),
		DBPassword: getEnv("DB_PASSWORD", "querydesk"),
		DBName:     getEnv("DB_NAME", "querydesk"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "querydesk.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Attachments
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	// Parse upload size cap
	maxStr := getEnv("MAX_UPLOAD_BYTES", "")
	config.MaxUploadBytes = DefaultMaxUploadBytes
	if maxStr != "" {
		if n, err := strconv.ParseInt(maxStr, 10, 64); err == nil && n > 0 {
			config.MaxUploadBytes = n
		} else {
			log.Printf("Warning: invalid MAX_UPLOAD_BYTES value '%s', using default\n", maxStr)
		}
	}

	// Parse extension allow-list, e.g. "pdf,png,txt". Comparison is always
	// case-insensitive.
	config.AllowedExtensions = make(map[string]bool)
	extList := defaultAllowedExtensions
	if s := getEnv("ALLOWED_EXTENSIONS", ""); s != "" {
		extList = strings.Split(s, ",")
	}
	for _, ext := range extList {
		ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
		if ext != "" {
			config.AllowedExtensions[ext] = true
		}
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
