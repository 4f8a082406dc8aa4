package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Session lookup backends
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort string

	JWTSecret string

	AccessTokenMaxAge int
	ChallengeMaxAge   int

	SessionBackend string

	MaxPostLength         int
	MaxCommentLength      int
	MaxUsernameLength     int
	MaxSocialHandleLength int
	MaxDescriptionLength  int

	WorkerCount int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

// intEnv reads a positive integer, falling back to def when unset or invalid.
func intEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func strEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     strEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  strEnv("DB_SSLMODE", "require"),

		RedisURL: strEnv("REDIS_URL", "redis://localhost:6379"),

		ServerPort: strEnv("SERVER_PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		AccessTokenMaxAge: intEnv("ACCESS_TOKEN_MAX_AGE", 900),
		ChallengeMaxAge:   intEnv("CHALLENGE_MAX_AGE", 300),

		SessionBackend: strEnv("SESSION_BACKEND", SessionBackendMemory),

		MaxPostLength:         intEnv("MAX_POST_LENGTH", 280),
		MaxCommentLength:      intEnv("MAX_COMMENT_LENGTH", 500),
		MaxUsernameLength:     intEnv("MAX_USERNAME_LENGTH", 50),
		MaxSocialHandleLength: intEnv("MAX_SOCIAL_HANDLE_LENGTH", 30),
		MaxDescriptionLength:  intEnv("MAX_DESCRIPTION_LENGTH", 160),

		WorkerCount: intEnv("WORKER_COUNT", 2),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}, nil
}

// MediaEnabled reports whether all R2 settings are present.
func (c *Config) MediaEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}
