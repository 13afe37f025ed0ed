package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	StatementTimeoutMS int
}

// MinIOConfig holds object storage settings for MinIO.
// An empty Endpoint disables document archiving.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether object storage is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig configures bearer token issuance.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// RetrievalConfig bounds the policy-aware over-fetch loop.
type RetrievalConfig struct {
	OverfetchMultiplier int
	MinCandidatePool    int
	MaxCandidatePool    int
	DefaultTopK         int
	MaxTopK             int
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	Backend     string // "hash" or "gemini"
	Dimension   int
	GeminiModel string
}

// LLMConfig controls optional generative answers.
type LLMConfig struct {
	Enabled      bool
	GeminiAPIKey string
	GeminiModel  string
}

// AuditConfig tunes audit persistence and reads.
type AuditConfig struct {
	WriteTimeout time.Duration
	DefaultLimit int
	MaxLimit     int
}

// IngestConfig points at the demo corpus and sets chunking parameters.
type IngestConfig struct {
	DemoDir      string
	ChunkSize    int
	ChunkOverlap int
}

// RateLimitConfig applies to the unauthenticated auth endpoints.
type RateLimitConfig struct {
	AuthRPS   float64
	AuthBurst int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	LogLevel  string
	Timezone  string
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Auth      AuthConfig
	Retrieval RetrievalConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Audit     AuditConfig
	Ingest    IngestConfig
	RateLimit RateLimitConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Timezone: getEnv("TZ", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			StatementTimeoutMS: getEnvInt("DB_STATEMENT_TIMEOUT_MS", 5000),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "docrag"),
			TokenTTL:  time.Duration(getEnvInt("JWT_EXPIRES_MINUTES", 60)) * time.Minute,
		},
		Retrieval: RetrievalConfig{
			OverfetchMultiplier: getEnvInt("RETRIEVAL_OVERFETCH_MULTIPLIER", 4),
			MinCandidatePool:    getEnvInt("RETRIEVAL_MIN_CANDIDATE_POOL", 10),
			MaxCandidatePool:    getEnvInt("RETRIEVAL_MAX_CANDIDATE_POOL", 200),
			DefaultTopK:         getEnvInt("QUERY_DEFAULT_TOP_K", 3),
			MaxTopK:             getEnvInt("QUERY_MAX_TOP_K", 10),
		},
		Embedding: EmbeddingConfig{
			Backend:     strings.ToLower(getEnv("EMBEDDING_BACKEND", "hash")),
			Dimension:   getEnvInt("EMBEDDING_DIM", 256),
			GeminiModel: getEnv("EMBEDDING_GEMINI_MODEL", "text-embedding-004"),
		},
		LLM: LLMConfig{
			Enabled:      getEnvBool("LLM_ENABLED", false),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("LLM_GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Audit: AuditConfig{
			WriteTimeout: time.Duration(getEnvInt("AUDIT_WRITE_TIMEOUT_MS", 2000)) * time.Millisecond,
			DefaultLimit: getEnvInt("AUDIT_DEFAULT_LIMIT", 50),
			MaxLimit:     getEnvInt("AUDIT_MAX_LIMIT", 200),
		},
		Ingest: IngestConfig{
			DemoDir:      getEnv("DEMO_DATA_DIR", "data/demo"),
			ChunkSize:    getEnvInt("CHUNK_SIZE", 600),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 120),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 5),
			AuthBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
