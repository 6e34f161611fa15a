package config

import (
	"os"
	"strconv"
	"time"

	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	MongoDatabase           string
	MetricsPort             string

	JWTSecret     string
	TokenTTL      time.Duration
	AuthRateLimit int

	LogLevel  string
	LogFormat string

	ImageStore  string
	MediaRoot   string
	MediaURL    string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	PageSize    int
	PDFFontPath string
}

// Load reads the configuration from the environment, after merging a .env
// file from the working directory when one exists.
func Load() *Config {
	envErr := godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresUrl:             getEnv("POSTGRES_URL", "host=localhost user=postgres password=postgres dbname=foodgram port=5432 sslmode=disable"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "foodgram"),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		TokenTTL:                getDuration("TOKEN_TTL", 72*time.Hour),
		AuthRateLimit:           getNonNegativeInt("AUTH_RATE_LIMIT", 20),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", ""),
		ImageStore:              getEnv("IMAGE_STORE", "fs"),
		MediaRoot:               getEnv("MEDIA_ROOT", "./media"),
		MediaURL:                getEnv("MEDIA_URL", "/media/"),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3Region:                getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:              getEnv("S3_ENDPOINT", ""),
		PageSize:                getPositiveInt("PAGE_SIZE", 6),
		PDFFontPath:             getEnv("PDF_FONT_PATH", ""),
	}
	if envErr != nil {
		logging.Debug().Msg("no .env file found, using process environment")
	}
	return cfg
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logging.Warn().Str("key", key).Str("value", raw).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}

func getPositiveInt(key string, defaultValue int) int {
	return getInt(key, defaultValue, 1)
}

func getNonNegativeInt(key string, defaultValue int) int {
	return getInt(key, defaultValue, 0)
}

func getInt(key string, defaultValue, floor int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		logging.Warn().Str("key", key).Str("value", raw).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}
	return n
}
