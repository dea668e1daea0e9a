package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storefront/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	for _, k := range []string{"PORT", "CATALOG_URL", "CATALOG_TTL", "STORAGE_DRIVER", "PAGE_SIZE", "DEBOUNCE_WINDOW", "ACK_WINDOW", "DEFAULT_LOCALE"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://fakestoreapi.com", cfg.CatalogURL)
	assert.Equal(t, time.Hour, cfg.CatalogTTL)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 400*time.Millisecond, cfg.DebounceWindow)
	assert.Equal(t, 1500*time.Millisecond, cfg.AckWindow)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.Empty(t, cfg.EnvFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("DEBOUNCE_WINDOW", "250ms")
	t.Setenv("CATALOG_TIMEOUT", "3s")

	cfg := config.Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, config.StorageRedis, cfg.StorageDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 24, cfg.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceWindow)
	assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("PAGE_SIZE", "-4")
	t.Setenv("ACK_WINDOW", "soon")
	t.Setenv("CATALOG_TTL", "-1h")

	cfg := config.Load()

	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.AckWindow)
	assert.Equal(t, time.Hour, cfg.CatalogTTL)
}
