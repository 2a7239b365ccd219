package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	StorageMemory     = "memory"
	StoragePersistent = "persistent"
)

// Lead stores
const (
	LeadStoreMongo    = "mongo"
	LeadStorePostgres = "postgres"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Storage selection
	StorageBackend string `json:"storage_backend"`
	LeadStore      string `json:"lead_store"`

	// MongoDB configuration
	MongoURI           string `json:"mongo_uri"`
	MongoDatabase      string `json:"mongo_database"`
	QuestionCollection string `json:"mongo_question_collection"`
	LeadCollection     string `json:"mongo_lead_collection"`

	// PostgreSQL configuration (LEAD_STORE=postgres)
	PostgresDSN string `json:"-"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redis_db"`

	// Verification and sessions
	VerificationTTL time.Duration `json:"verification_ttl"`
	SessionTTL      time.Duration `json:"session_ttl"`

	// SMS configuration
	SMSProvider   string        `json:"sms_provider"`
	SMSSender     string        `json:"sms_sender"`
	SMSTimeout    time.Duration `json:"sms_timeout"`
	SMSBrand      string        `json:"sms_brand"`
	SMSRateLimit  int           `json:"sms_rate_limit"`
	AligoAPIKey   string        `json:"-"`
	AligoUserID   string        `json:"aligo_user_id"`
	SensAccessKey string        `json:"-"`
	SensSecretKey string        `json:"-"`
	SensServiceID string        `json:"sens_service_id"`

	// Flow configuration
	FlowVerificationNext string `json:"flow_verification_next"`
	FlowCompleteMessage  string `json:"flow_complete_message"`

	// Admin configuration
	AdminSecret string `json:"-"`

	// HTTP configuration
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`

	// Tracing configuration
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	port, err := getEnvAsIntOrDefault("PORT", 8080)
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := getEnvAsIntOrDefault("REDIS_DB", 0)
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	verificationTTL, err := time.ParseDuration(getEnvOrDefault("VERIFICATION_TTL", "3m"))
	if err != nil {
		return fmt.Errorf("invalid VERIFICATION_TTL: %w", err)
	}
	if verificationTTL <= 0 {
		return fmt.Errorf("VERIFICATION_TTL must be positive")
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	smsTimeout, err := time.ParseDuration(getEnvOrDefault("SMS_TIMEOUT", "10s"))
	if err != nil {
		return fmt.Errorf("invalid SMS_TIMEOUT: %w", err)
	}

	smsRateLimit, err := getEnvAsIntOrDefault("SMS_RATE_LIMIT", 60)
	if err != nil {
		return fmt.Errorf("invalid SMS_RATE_LIMIT: %w", err)
	}
	if smsRateLimit < 0 {
		return fmt.Errorf("SMS_RATE_LIMIT must not be negative")
	}

	tracingEnabled, err := getEnvAsBoolOrDefault("TRACING_ENABLED", false)
	if err != nil {
		return fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}

	storageBackend := getEnvOrDefault("STORAGE_BACKEND", StoragePersistent)
	if storageBackend != StorageMemory && storageBackend != StoragePersistent {
		return fmt.Errorf("invalid STORAGE_BACKEND: %s", storageBackend)
	}

	leadStore := getEnvOrDefault("LEAD_STORE", LeadStoreMongo)
	if leadStore != LeadStoreMongo && leadStore != LeadStorePostgres {
		return fmt.Errorf("invalid LEAD_STORE: %s", leadStore)
	}
	postgresDSN := os.Getenv("POSTGRES_DSN")
	if leadStore == LeadStorePostgres && storageBackend == StoragePersistent && postgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN environment variable is required when LEAD_STORE=postgres")
	}

	verificationNext := getEnvOrDefault("FLOW_VERIFICATION_NEXT", "complete")
	if verificationNext != "complete" && verificationNext != "following" {
		return fmt.Errorf("invalid FLOW_VERIFICATION_NEXT: %s", verificationNext)
	}

	AppConfig = &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		StorageBackend: storageBackend,
		LeadStore:      leadStore,

		// MongoDB configuration
		MongoURI:           getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnvOrDefault("MONGODB_DATABASE", "leadbot"),
		QuestionCollection: getEnvOrDefault("MONGODB_QUESTION_COLLECTION", "questions"),
		LeadCollection:     getEnvOrDefault("MONGODB_LEAD_COLLECTION", "leads"),

		PostgresDSN: postgresDSN,

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		VerificationTTL: verificationTTL,
		SessionTTL:      sessionTTL,

		// SMS configuration
		SMSProvider:   strings.ToLower(getEnvOrDefault("SMS_PROVIDER", "demo")),
		SMSSender:     getEnvOrDefault("SMS_SENDER", ""),
		SMSTimeout:    smsTimeout,
		SMSBrand:      getEnvOrDefault("SMS_BRAND", "창업컨설팅"),
		SMSRateLimit:  smsRateLimit,
		AligoAPIKey:   os.Getenv("ALIGO_API_KEY"),
		AligoUserID:   os.Getenv("ALIGO_USER_ID"),
		SensAccessKey: os.Getenv("SENS_ACCESS_KEY"),
		SensSecretKey: os.Getenv("SENS_SECRET_KEY"),
		SensServiceID: os.Getenv("SENS_SERVICE_ID"),

		FlowVerificationNext: verificationNext,
		FlowCompleteMessage:  os.Getenv("FLOW_COMPLETE_MESSAGE"),

		AdminSecret: os.Getenv("ADMIN_SECRET"),

		CORSAllowedOrigins: splitAndTrim(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		TracingEnabled:  tracingEnabled,
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}

	return nil
}

// IsProduction reports whether the service runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
