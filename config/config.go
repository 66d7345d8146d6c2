package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "your-secret-key-change-this-in-production"

type Config struct {
	// Server configuration
	Port        string
	GinMode     string
	CORSOrigins []string

	// Database configuration
	MongoURI      string
	MongoDatabase string

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Rate limiting. RedisAddress switches the limiter from in-process to Redis.
	RateLimit       int
	RateLimitWindow time.Duration
	RedisAddress    string

	// Logging
	LogLevel  string
	LogFormat string

	// Object storage: "cloudinary" or "s3"
	StorageBackend   string
	CloudinaryURL    string
	CloudinaryFolder string
	S3Region         string
	S3Bucket         string
	S3Endpoint       string
	S3AccessKey      string
	S3SecretKey      string
	S3PublicBaseURL  string

	// Web push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string

	// Chat identity registration
	ChatAppID   string
	ChatRegion  string
	ChatAPIKey  string
	ChatBaseURL string

	WorkerCount int
	QueueSize   int
}

// Load reads configuration from a .env file (if one exists) and the environment.
func Load() Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = filepath.Join("..", ".env")
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MongoURI:         getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:    getEnv("MONGODB_DATABASE", "foundersnexus"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTTTL:           getEnvDuration("JWT_TTL", 24*time.Hour),
		RateLimit:        getEnvInt("RATE_LIMIT", 60),
		RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "cloudinary"),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "pitch_decks"),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3Bucket:         getEnv("S3_BUCKET", "pitch-decks"),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL:  getEnv("S3_PUBLIC_BASE_URL", ""),
		VAPIDPublicKey:   getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:  getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber:  getEnv("VAPID_SUBSCRIBER", "mailto:admin@foundersnexus.com"),
		ChatAppID:        getEnv("COMETCHAT_APP_ID", ""),
		ChatRegion:       getEnv("COMETCHAT_REGION", "us"),
		ChatAPIKey:       getEnv("COMETCHAT_API_KEY", ""),
		ChatBaseURL:      getEnv("COMETCHAT_BASE_URL", ""),
		WorkerCount:      getEnvInt("WORKER_COUNT", 4),
		QueueSize:        getEnvInt("WORKER_QUEUE_SIZE", 1000),
	}

	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.ChatBaseURL == "" && cfg.ChatAppID != "" {
		cfg.ChatBaseURL = "https://" + cfg.ChatAppID + ".api-" + cfg.ChatRegion + ".cometchat.io/v3"
	}

	return cfg
}

// Release reports whether gin should run in release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

// ChatEnabled reports whether chat identity registration is configured.
func (c Config) ChatEnabled() bool {
	return c.ChatBaseURL != "" && c.ChatAPIKey != ""
}

// PushEnabled reports whether VAPID keys are available for web push.
func (c Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
