package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateServer())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.ReadOnly)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/accounts")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("READ_ONLY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.ReadOnly)
}

func TestLoadValidation(t *testing.T) {
	t.Run("postgres needs a url", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})
	t.Run("unknown store", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown STORE")
	})
	t.Run("missing secret", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STORE", "memory")
		t.Setenv("JWT_SECRET", "")
		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorContains(t, cfg.ValidateServer(), "JWT_SECRET")
	})
}
