package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration
	LogMode string

	StorageDriver string
	GormLogLevel  string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string
	SQLitePath    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SyncLockTTL     time.Duration
	SyncConcurrency int

	LeetCodeGraphQLURL string
	GFGProfileURL      string
	TUFProfileURL      string
	ChromePath         string
	HTTPClientTimeout  time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		JWTKey:        []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:        time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		LogMode:       getEnv("LOG_MODE", "development"),
		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		GormLogLevel:  getEnv("GORM_LOG_LEVEL", "warn"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "prep_tracker_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		SQLitePath:    getEnv("SQLITE_PATH", "prep_tracker.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SyncLockTTL:     time.Duration(getEnvAsInt("SYNC_LOCK_TTL_SECONDS", 300)) * time.Second,
		SyncConcurrency: getEnvAsInt("SYNC_CONCURRENCY", 3),

		LeetCodeGraphQLURL: getEnv("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		GFGProfileURL:      getEnv("GFG_PROFILE_URL", "https://www.geeksforgeeks.org/user/%s/"),
		TUFProfileURL:      getEnv("TUF_PROFILE_URL", "https://takeuforward.org/plus/profile/%s"),
		ChromePath:         getEnv("CHROME_PATH", ""),
		HTTPClientTimeout:  time.Duration(getEnvAsInt("HTTP_CLIENT_TIMEOUT_SECONDS", 30)) * time.Second,

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
