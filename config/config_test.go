package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "restodash", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "/menus", cfg.API.MenusPath)
		assert.Equal(t, "/orders", cfg.API.OrdersPath)
		assert.Equal(t, "/users", cfg.API.UsersPath)
		assert.Equal(t, "file", cfg.Token.Backend)
		assert.Equal(t, "restodash:token", cfg.Token.RedisKey)
		assert.Equal(t, time.Duration(0), cfg.Cache.StaleTime)
		assert.True(t, cfg.Cache.RefetchOnInvalidate)
		assert.False(t, cfg.Dialog.StrictEdit)
		assert.Equal(t, 3, cfg.Display.OrderPageSize)
		assert.NotEmpty(t, cfg.App.InstanceID)
		assert.Equal(t, cfg.App.InstanceID, cfg.Kafka.GroupID)
	})

	t.Run("loads values from environment variables with RESTODASH prefix", func(t *testing.T) {
		t.Setenv("RESTODASH_API_BASE_URL", "https://api.example.com/api/v1")
		t.Setenv("RESTODASH_TOKEN_BACKEND", "redis")
		t.Setenv("RESTODASH_KAFKA_ENABLED", "true")
		t.Setenv("RESTODASH_KAFKA_BROKERS", "k1:9092,k2:9092")
		t.Setenv("RESTODASH_CACHE_REFETCH_ON_INVALIDATE", "false")
		t.Setenv("RESTODASH_DIALOG_STRICT_EDIT", "true")
		t.Setenv("RESTODASH_DISPLAY_TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com/api/v1", cfg.API.BaseURL)
		assert.Equal(t, "redis", cfg.Token.Backend)
		assert.True(t, cfg.Kafka.Enabled)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.False(t, cfg.Cache.RefetchOnInvalidate)
		assert.True(t, cfg.Dialog.StrictEdit)
		assert.Equal(t, time.UTC, cfg.Display.Location())
	})

	t.Run("rejects unknown token backend", func(t *testing.T) {
		t.Setenv("RESTODASH_TOKEN_BACKEND", "localstorage")

		_, err := Load()
		assert.ErrorContains(t, err, "token.backend")
	})

	t.Run("requires brokers when kafka is enabled", func(t *testing.T) {
		t.Setenv("RESTODASH_KAFKA_ENABLED", "true")

		_, err := Load()
		assert.ErrorContains(t, err, "kafka.brokers")
	})

	t.Run("requires https in production", func(t *testing.T) {
		t.Setenv("RESTODASH_APP_ENV", "production")
		t.Setenv("RESTODASH_API_BASE_URL", "http://api.example.com")

		_, err := Load()
		assert.ErrorContains(t, err, "https")
	})

	t.Run("rejects invalid timezone", func(t *testing.T) {
		t.Setenv("RESTODASH_DISPLAY_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		assert.ErrorContains(t, err, "display.timezone")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "dash", Password: "p@ss", DBName: "restodash", SSLMode: "disable"}
	assert.Equal(t, "postgres://dash:p%40ss@db:5432/restodash?sslmode=disable", d.DSN())
}
