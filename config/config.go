package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	AppURL      string
	OrgName     string
	CorsOrigins string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // overrides the individual DB_* parts when set

	JWTKey      string // shared secret of the identity provider
	JWTAudience string

	SendGridAPIKey  string
	SendGridBaseURL string
	EmailFrom       string
	EmailFromName   string

	AnthropicAPIKey    string
	AnthropicBaseURL   string
	AnthropicModel     string
	AnthropicMaxTokens int
	EnhanceTimeout     time.Duration

	StorageMode   string // local, gcs or s3
	UploadDir     string
	PublicBaseURL string
	GCSBucket     string
	S3Bucket      string
	S3Region      string
	MaxUploadMB   int

	NotifyConcurrency int
	ReviewDigestCron  string
	ReviewDueSoonDays int

	LogLevel string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET. Update it in your environment.")
	}
	if AppConfig.SendGridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY is empty. Notification emails will fail.")
	}
	if AppConfig.AnthropicAPIKey == "" {
		log.Println("Warning: ANTHROPIC_API_KEY is empty. Document enhancement is unavailable.")
	}
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("APP_ENV", "development"),
		AppURL:      strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		OrgName:     getEnv("ORG_NAME", "Hamilton George Care"),
		CorsOrigins: getEnv("CORS_ORIGINS", "*"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "policy_portal"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:      getEnv("JWT_SECRET", "defaultSecret"),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),

		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		SendGridBaseURL: getEnv("SENDGRID_BASE_URL", "https://api.sendgrid.com"),
		EmailFrom:       getEnv("EMAIL_FROM", "noreply@example.com"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Policy Portal"),

		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL:   strings.TrimRight(getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"), "/"),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		AnthropicMaxTokens: getEnvInt("ANTHROPIC_MAX_TOKENS", 4096),
		EnhanceTimeout:     getEnvDuration("ENHANCE_TIMEOUT", 5*time.Minute),

		StorageMode:   strings.ToLower(getEnv("STORAGE_MODE", "local")),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		GCSBucket:     getEnv("GCS_BUCKET", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "eu-west-2"),
		MaxUploadMB:   getEnvInt("MAX_UPLOAD_MB", 20),

		NotifyConcurrency: getEnvInt("NOTIFY_CONCURRENCY", 0),
		ReviewDigestCron:  getEnvAllowEmpty("REVIEW_DIGEST_CRON", "0 8 * * *"),
		ReviewDueSoonDays: getEnvInt("REVIEW_DUE_SOON_DAYS", 30),

		LogLevel: getEnv("LOG_LEVEL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvAllowEmpty treats an explicitly empty variable as a value, not as unset
func getEnvAllowEmpty(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
