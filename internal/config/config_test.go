package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/damacus/bucket-console/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Empty(t, cfg.Server.SecretKey)
	assert.False(t, cfg.Server.SecureCookies)
	assert.Equal(t, services.DriverS3, cfg.Storage.Driver)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
	assert.True(t, cfg.Storage.UseSSL)
	assert.False(t, cfg.Storage.PathStyle)
	assert.Equal(t, 100, cfg.Storage.PageSize)
	assert.False(t, cfg.Storage.AdminUsage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("STORAGE_REGION", "eu-west-1")
	t.Setenv("STORAGE_PAGE_SIZE", "25")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, services.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "eu-west-1", cfg.Storage.Region)
	assert.Equal(t, 25, cfg.Storage.PageSize)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_SECRET_KEY=from-dotenv\nSTORAGE_DRIVER=memory\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SERVER_SECRET_KEY")
		os.Unsetenv("STORAGE_DRIVER")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Server.SecretKey)
	assert.Equal(t, services.DriverMemory, cfg.Storage.Driver)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	t.Setenv("STORAGE_PAGE_SIZE", "5000")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{Storage: services.StoreConfig{Driver: services.DriverS3, PageSize: 100}}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Driver = "gcs"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.PageSize = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.PageSize = 1001
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Driver = services.DriverMinio
	assert.Error(t, cfg.Validate())
	cfg.Storage.Endpoint = "localhost:9000"
	assert.NoError(t, cfg.Validate())
}
