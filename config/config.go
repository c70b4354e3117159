package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"mailprobe/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	Redis     RedisConfig `json:"redis"`
	SentryDSN string      `json:"-"`

	// APIKey seeds the bootstrap client credential on first boot.
	APIKey        string `json:"-"`
	EncryptionKey string `json:"-"`

	// Probe identity and timeouts
	FromEmail      string        `json:"from_email"`
	HelloName      string        `json:"hello_name"`
	SMTPPort       int           `json:"smtp_port"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	SMTPTimeout    time.Duration `json:"smtp_timeout"`
	VerifyCatchAll bool          `json:"verify_catch_all"`

	// Proxy pool
	ProxyPoolEnabled bool               `json:"proxy_pool_enabled"`
	ProxyRotation    string             `json:"proxy_rotation"`
	ProxySeeds       []models.ProxySeed `json:"-"`

	// ProviderStrategies maps provider name to a strategy spec, e.g.
	// "smtp", "api", "skip", "headless" or "smtp@label" to pin a proxy.
	ProviderStrategies map[string]string `json:"provider_strategies"`

	// Worker and API limits
	WorkerConcurrency  int           `json:"worker_concurrency"`
	WorkerPollInterval time.Duration `json:"worker_poll_interval"`
	RateLimitMax       int           `json:"rate_limit_max"`
	RateLimitWindow    time.Duration `json:"rate_limit_window"`
	CacheTTL           time.Duration `json:"cache_ttl"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "mailprobe"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),

		APIKey:        getEnv("API_KEY", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		FromEmail:      getEnv("FROM_EMAIL", "noreply@mailprobe.email"),
		HelloName:      getEnv("HELLO_NAME", "verify.mailprobe.email"),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 25),
		ConnectTimeout: getEnvAsDuration("CONNECT_TIMEOUT", 5*time.Second),
		SMTPTimeout:    getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
		VerifyCatchAll: getEnvAsBool("VERIFY_CATCH_ALL", true),

		ProxyPoolEnabled: getEnvAsBool("PROXY_POOL_ENABLED", false),
		ProxyRotation:    getEnv("PROXY_ROTATION", "round_robin"),

		ProviderStrategies: loadProviderStrategies(),

		WorkerConcurrency:  getEnvAsInt("WORKER_CONCURRENCY", 10),
		WorkerPollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", 10*time.Second),
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 60),
		RateLimitWindow:    getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		CacheTTL:           getEnvAsDuration("CACHE_TTL", time.Hour),
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if AppConfig.ProxyRotation != "round_robin" && AppConfig.ProxyRotation != "random" {
		return fmt.Errorf("PROXY_ROTATION must be round_robin or random, got %q", AppConfig.ProxyRotation)
	}

	if raw := getEnv("PROXIES", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &AppConfig.ProxySeeds); err != nil {
			return fmt.Errorf("PROXIES is not valid JSON: %w", err)
		}
	}

	logConfig()
	return nil
}

// loadProviderStrategies reads the PROVIDER_STRATEGY_* overrides. Unset
// providers keep the engine defaults.
func loadProviderStrategies() map[string]string {
	providers := []string{
		"gmail",
		"hotmail_b2b",
		"hotmail_b2c",
		"yahoo",
		"mimecast",
		"proofpoint",
		"default",
	}

	strategies := make(map[string]string)
	for _, p := range providers {
		key := "PROVIDER_STRATEGY_" + strings.ToUpper(p)
		if v := getEnv(key, ""); v != "" {
			strategies[p] = strings.ToLower(strings.TrimSpace(v))
		}
	}
	return strategies
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("5s", "1m30s") and bare
// integers, which are read as seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Redis: enabled=%t address=%s", AppConfig.Redis.Enabled, AppConfig.Redis.Address)
	log.Printf("Probe: from=%s hello=%s port=%d catch_all=%t",
		AppConfig.FromEmail,
		AppConfig.HelloName,
		AppConfig.SMTPPort,
		AppConfig.VerifyCatchAll)
	log.Printf("Proxy pool: enabled=%t rotation=%s seeds=%d",
		AppConfig.ProxyPoolEnabled,
		AppConfig.ProxyRotation,
		len(AppConfig.ProxySeeds))
}
