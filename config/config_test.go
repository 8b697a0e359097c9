package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "postgres", c.StorageDriver)
	assert.Equal(t, 5*time.Minute, c.CatalogCacheTTL)
	assert.Equal(t, "none", c.EventBroker)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
	assert.Equal(t, "0 9 * * *", c.ReminderSchedule)
	assert.Equal(t, 200*time.Millisecond, c.SlowRequest)
	assert.False(t, c.RemindersEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "pebble")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550001111")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pebble", c.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, 30*time.Second, c.CatalogCacheTTL)
	assert.True(t, c.RemindersEnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	assert.Error(t, err)
}
