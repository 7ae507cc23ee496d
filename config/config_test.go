package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Chdir(dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeEnv(t, "APP_PORT=3000\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "redis", cfg.Notify.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Sync.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.Sync.SweepInterval)
	assert.Equal(t, 10*time.Second, cfg.Auth.GateTimeout)
}

func TestLoadConfigReadsNotifyBackend(t *testing.T) {
	writeEnv(t, "APP_PORT=3000\nNOTIFY_BACKEND=postgres\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Notify.Backend)
}
