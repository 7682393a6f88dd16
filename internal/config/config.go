package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Identity provider
	JWTSecret   string
	WorkerToken string

	// Object store
	AWSRegion     string
	MediaBucket   string
	S3Endpoint    string
	TicketTTL     time.Duration
	PresignGetTTL time.Duration

	// Media pipeline
	MaxFilesPerItem int
	MaxImportSize   int64

	// AI summaries
	GeminiAPIKey string
	GeminiModel  string

	// Derivation worker
	FFmpegPath     string
	ThumbnailSize  int
	SweepInterval  time.Duration
	SweepMinAge    time.Duration

	// Redis
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	OTLPEndpoint string
}

// RedisAddr strips any redis:// scheme so the address can feed clients that
// want a bare host:port.
func (c *Config) RedisAddr() string {
	addr := strings.TrimPrefix(c.RedisURL, "redis://")
	if idx := strings.Index(addr, "/"); idx >= 0 {
		addr = addr[:idx]
	}
	return addr
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/ows"),
		DBName:      getEnv("DB_NAME", "ows"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		WorkerToken: getEnv("WORKER_TOKEN", ""),

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		MediaBucket:   getEnv("MEDIA_BUCKET", "ows-media"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		TicketTTL:     getEnvDuration("UPLOAD_TICKET_TTL", time.Hour),
		PresignGetTTL: getEnvDuration("PRESIGN_GET_TTL", time.Hour),

		MaxFilesPerItem: getEnvInt("MAX_FILES_PER_ITEM", 15),
		MaxImportSize:   getEnvInt64("MAX_IMPORT_SIZE", 50*1024*1024),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		ThumbnailSize: getEnvInt("THUMBNAIL_SIZE", 300),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 6*time.Hour),
		SweepMinAge:   getEnvDuration("SWEEP_MIN_AGE", 2*time.Hour),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if cfg.MediaBucket == "" {
		return nil, fmt.Errorf("MEDIA_BUCKET is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
