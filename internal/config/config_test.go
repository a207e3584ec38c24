package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("APP_ENV", "missing")

	cfg, err := loadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.MarginFactor)
	assert.Equal(t, 200.0, cfg.DefaultScale)
	assert.Equal(t, 20, cfg.PixabayPerPage)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "name", cfg.GeometryNameProperty)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "MARGIN_FACTOR=25\nCACHE_TTL=90m\nGEOMETRY_PATH=/srv/world.geojson\nPIXABAY_PER_PAGE=40\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0o644))
	t.Setenv("APP_ENV", "test")

	cfg, err := loadFrom(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.MarginFactor)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "/srv/world.geojson", cfg.GeometryPath)
	assert.Equal(t, 40, cfg.PixabayPerPage)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("DEFAULT_SCALE=150\n"), 0o644))
	t.Setenv("APP_ENV", "test")
	t.Setenv("DEFAULT_SCALE", "175")

	cfg, err := loadFrom(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, 175.0, cfg.DefaultScale)
}
