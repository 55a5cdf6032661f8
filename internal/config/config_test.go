package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                       "development",
		DBSSLMode:                 "disable",
		JWTSecret:                 "secure-secret-at-least-32-chars-long",
		DBPassword:                "secure-password",
		Port:                      "8080",
		RedisURL:                  "redis://localhost:6379",
		FrontendURL:               "https://sonance.example",
		PushWorkers:               2,
		PushQueue:                 QueueMemory,
		PushQueueSize:             16,
		NotificationRetentionDays: 30,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidatePushSettings(t *testing.T) {
	c := validConfig()
	c.PushQueue = "kafka"
	assert.Error(t, c.Validate())

	c = validConfig()
	c.PushWorkers = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.PushQueueSize = 0
	assert.Error(t, c.Validate())

	c = validConfig()
	c.PushQueue = QueueRedis
	assert.NoError(t, c.Validate())
}

func TestConfig_ValidateSchemaMode(t *testing.T) {
	for mode, ok := range map[string]bool{"": true, SchemaModeMigrate: true, SchemaModeOff: true, "auto": false} {
		c := validConfig()
		c.DBSchemaMode = mode
		if ok {
			assert.NoError(t, c.Validate(), mode)
		} else {
			assert.Error(t, c.Validate(), mode)
		}
	}
}

func TestConfig_ValidateProductionSecret(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBSSLMode = "require"
	c.JWTSecret = "short"
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("PUSH_QUEUE")
	defer os.Unsetenv("FRONTEND_URL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("PUSH_QUEUE", " Redis ")
	os.Setenv("FRONTEND_URL", "https://sonance.example/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, QueueRedis, c.PushQueue)
	assert.Equal(t, "https://sonance.example", c.FrontendURL)
	assert.Equal(t, 4, c.PushWorkers)
	assert.Equal(t, 30, c.NotificationRetentionDays)
	assert.Equal(t, SchemaModeMigrate, c.DBSchemaMode)
}
