package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string
	LogFile  string

	CatalogURL     string
	CatalogTimeout time.Duration
	CatalogTTL     time.Duration

	StorageDriver string // memory, sqlite, redis or none
	DBDSN         string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PageSize       int
	DebounceWindow time.Duration
	AckWindow      time.Duration
	DefaultLocale  string

	TemplatesDir string
	StaticDir    string

	// EnvFile is the dotenv file that was loaded, if any.
	EnvFile string
}

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageNone   = "none"
)

// Load reads the environment. Outside production a .env file in the working
// directory is loaded first; variables already set are not overridden.
// Unparseable numbers and durations fall back to their defaults.
func Load() Config {
	appEnv := str("APP_ENV", "development")

	var envFile string
	if appEnv != "production" {
		if err := godotenv.Load(".env"); err == nil {
			envFile = ".env"
		}
	}

	cfg := Config{
		AppEnv:   appEnv,
		Port:     str("PORT", "8080"),
		LogLevel: strings.ToLower(str("LOG_LEVEL", "info")),
		LogFile:  str("LOG_FILE", "./storefront.log"),

		CatalogURL:     str("CATALOG_URL", "https://fakestoreapi.com"),
		CatalogTimeout: duration("CATALOG_TIMEOUT", 10*time.Second),
		CatalogTTL:     duration("CATALOG_TTL", time.Hour),

		StorageDriver: strings.ToLower(str("STORAGE_DRIVER", StorageMemory)),
		DBDSN:         str("DB_DSN", "storefront.db"),
		RedisAddr:     str("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       integer("REDIS_DB", 0),

		PageSize:       integer("PAGE_SIZE", 10),
		DebounceWindow: duration("DEBOUNCE_WINDOW", 400*time.Millisecond),
		AckWindow:      duration("ACK_WINDOW", 1500*time.Millisecond),
		DefaultLocale:  strings.ToLower(str("DEFAULT_LOCALE", "en")),

		TemplatesDir: str("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    str("STATIC_DIR", "./web/static"),

		EnvFile: envFile,
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	switch cfg.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis, StorageNone:
	default:
		cfg.StorageDriver = StorageMemory
	}
	return cfg
}

func (c Config) Production() bool { return c.AppEnv == "production" }

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
