package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "./careon.db", cfg.DatabasePath)
	assert.Equal(t, "adb", cfg.ADBPath)
	assert.Equal(t, 30*time.Second, cfg.ADBTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("DEBUG", "true")
	t.Setenv("ADB_PATH", "/opt/adb")
	t.Setenv("ADB_TIMEOUT_SECONDS", "5")
	t.Setenv("CALIBRATION_SESSION_TTL_MINUTES", "10")
	t.Setenv("POSTING_MAX_RETRIES", "5")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/opt/adb", cfg.ADBPath)
	assert.Equal(t, 5*time.Second, cfg.ADBTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoadOverridesWin(t *testing.T) {
	t.Setenv("PORT", "9001")
	addr := ":7777"
	dbPath := "file:override.db"
	debug := true
	ttl := 2 * time.Minute

	cfg, err := Load(Overrides{Addr: &addr, DatabasePath: &dbPath, Debug: &debug, SessionTTL: &ttl})
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Addr)
	assert.Equal(t, "file:override.db", cfg.DatabasePath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load(Overrides{})
	assert.Error(t, err)
}

func TestLoadRequiresPasswordHashWithSecret(t *testing.T) {
	t.Setenv("CAREON_ADMIN_SECRET", "a-sufficiently-long-secret")
	_, err := Load(Overrides{})
	assert.Error(t, err)

	t.Setenv("CAREON_ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "a-sufficiently-long-secret", cfg.AdminSecret)
}
