package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " root@example.com, ,chair@example.com ")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "password")
	t.Setenv("POSTGRES_DB", "rollcall")
	t.Setenv("COOKIE_SECURE", "false")

	cfg := Load()

	assert.Equal(t, []string{"root@example.com", "chair@example.com"}, cfg.AdminEmails)
	assert.Equal(t, "postgres://user:password@db:5432/rollcall?sslmode=disable", cfg.Postgres.ConnString())
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
}

func TestValidateServer(t *testing.T) {
	cfg := Config{StoreDriver: StoreDriverMemory, SessionSecret: "0123456789abcdef"}
	require.NoError(t, cfg.ValidateServer())

	cfg.SessionSecret = "short"
	assert.ErrorContains(t, cfg.ValidateServer(), "SESSION_SECRET")

	cfg = Config{StoreDriver: "sqlite", SessionSecret: "0123456789abcdef"}
	assert.ErrorContains(t, cfg.ValidateServer(), "unknown STORE_DRIVER")

	cfg = Config{StoreDriver: StoreDriverPostgres, SessionSecret: "0123456789abcdef"}
	assert.ErrorContains(t, cfg.ValidateServer(), "POSTGRES_HOST")
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, Config{LogLevel: "debug", LogFormat: "text"}.SetupLogging())
	assert.Error(t, Config{LogLevel: "loud", LogFormat: "text"}.SetupLogging())
	assert.Error(t, Config{LogLevel: "info", LogFormat: "xml"}.SetupLogging())
}
