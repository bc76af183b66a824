package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Queue    QueueConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	// Location 用來判斷活動日期是否已過
	Location string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrateOnStart 啟動時自動套用 migrations
	MigrateOnStart bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type QueueConfig struct {
	// Driver: "redis" 使用 Redis Stream，"memory" 使用 channel
	Driver           string
	ConsumerID       string
	BufferSize       int
	ClaimMinIdleTime time.Duration
	MaxRetryCount    int
	StreamMaxLen     int64
}

type LogConfig struct {
	Level string
}

var AppConfig *Config

// LoadConfig 讀取 .env(若存在)與環境變數
func LoadConfig() *Config {
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Auth:     GetAuthConfig(),
		Queue:    GetQueueConfig(),
		Log:      LogConfig{Level: getEnv("LOG_LEVEL", "info")},
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "5433"), // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",

		MigrateOnStart: true,
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:            "0",
			ShutdownTimeout: time.Second,
			Location:        "UTC",
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Auth: AuthConfig{
			JWTSecret: "test-secret",
			Issuer:    "meetup-test",
		},
		Queue: QueueConfig{
			Driver:           "memory",
			BufferSize:       100,
			ClaimMinIdleTime: time.Second,
			MaxRetryCount:    3,
		},
		Log: LogConfig{Level: "debug"},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Location:        getEnv("EVENT_TIMEZONE", "UTC"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "postgres"),
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
		MigrateOnStart: getEnvBool("DB_MIGRATE_ON_START", true),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		Issuer:    getEnv("JWT_ISSUER", ""),
	}
}

func GetQueueConfig() QueueConfig {
	bufferSize, err := strconv.Atoi(getEnv("QUEUE_BUFFER_SIZE", "1000"))
	if err != nil {
		panic(err)
	}
	maxRetry, err := strconv.Atoi(getEnv("QUEUE_MAX_RETRY", "5"))
	if err != nil {
		panic(err)
	}
	maxLen, err := strconv.ParseInt(getEnv("QUEUE_STREAM_MAXLEN", "100000"), 10, 64)
	if err != nil {
		panic(err)
	}

	return QueueConfig{
		Driver:           getEnv("QUEUE_DRIVER", "redis"),
		ConsumerID:       getEnv("QUEUE_CONSUMER_ID", ""),
		BufferSize:       bufferSize,
		ClaimMinIdleTime: getEnvDuration("QUEUE_CLAIM_MIN_IDLE", 5*time.Second),
		MaxRetryCount:    maxRetry,
		StreamMaxLen:     maxLen,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return fallback
	}
	return value
}
