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
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	AppEnv    string
	Port      string
	UploadDir string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type DatabaseConfig struct {
	Driver string // sqlite or postgres
	File   string
	URL    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// RedisConfig enables the statistics cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	StatsTTL time.Duration
}

// KafkaConfig enables stock event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// IsDevelopment reports whether APP_ENV names a development environment.
func (c Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

// DSN returns the data source for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URL
	}
	return c.File
}

// devJWTSecret signs tokens in development when JWT_SECRET is unset.
const devJWTSecret = "devsecret"

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			AppEnv:    getEnv("APP_ENV", "dev"),
			Port:      getEnv("PORT", "3000"),
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			File:   getEnv("DB_FILE", "./inventory.db"),
			URL:    getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "inventory.stock-events"),
		},
	}

	if cfg.JWT.Secret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, fmt.Errorf("JWT_SECRET is required when APP_ENV is %q", cfg.Server.AppEnv)
		}
		cfg.JWT.Secret = devJWTSecret
	}

	ttlHours, err := getEnvInt("JWT_TTL_HOURS", 7*24)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL_HOURS: %w", err)
	}
	if ttlHours <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL_HOURS must be > 0")
	}
	cfg.JWT.TTL = time.Duration(ttlHours) * time.Hour

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.Redis.DB = redisDB

	statsTTL, err := getEnvInt("STATS_CACHE_TTL_SEC", 30)
	if err != nil {
		return Config{}, fmt.Errorf("invalid STATS_CACHE_TTL_SEC: %w", err)
	}
	if statsTTL <= 0 {
		return Config{}, fmt.Errorf("STATS_CACHE_TTL_SEC must be > 0")
	}
	cfg.Redis.StatsTTL = time.Duration(statsTTL) * time.Second

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.File == "" {
			return Config{}, fmt.Errorf("DB_FILE must not be empty")
		}
	case "postgres":
		if cfg.Database.URL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic == "" {
		return Config{}, fmt.Errorf("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
