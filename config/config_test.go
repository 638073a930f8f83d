package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 50, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 8, cfg.Inventory.PageSize)
	assert.True(t, cfg.Inventory.SeedDemoData)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Advisor.ExplainModel)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Advisor.SuggestModel)
	assert.Empty(t, cfg.Advisor.APIKey)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "apotek_config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
		"app": {"port": "9090"},
		"inventory": {"low_stock_threshold": 30, "page_size": 20}
	}`), 0644))
	t.Setenv("APOTEK_ADVISOR_API_KEY", "key-from-env")
	t.Setenv("APOTEK_INVENTORY_PAGE_SIZE", "12")

	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 30, cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 12, cfg.Inventory.PageSize)
	assert.Equal(t, "key-from-env", cfg.Advisor.APIKey)
	assert.Equal(t, cfg, GetConfig())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "apotek_config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{not json`), 0644))

	_, err := LoadConfig(p)
	assert.Error(t, err)
}

func TestSaveInventory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "apotek_config.json")
	_, err := LoadConfig(p)
	require.NoError(t, err)

	saved, err := SaveInventory(InventoryConfig{LowStockThreshold: 25, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 25, saved.Inventory.LowStockThreshold)
	assert.Equal(t, 8, saved.Inventory.PageSize, "zero page size falls back to default")

	reloaded, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 25, reloaded.Inventory.LowStockThreshold)
	assert.Equal(t, 24*time.Hour, reloaded.Auth.TokenTTL)
	assert.False(t, reloaded.Inventory.SeedDemoData)
}

func TestSaveInventory_KeepsEnvSecretsOutOfFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "apotek_config.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"app": {"port": "9090"}}`), 0644))
	t.Setenv("APOTEK_ADVISOR_API_KEY", "env-only-api-key")
	t.Setenv("APOTEK_AUTH_JWT_SECRET", "env-only-jwt-secret")

	_, err := LoadConfig(p)
	require.NoError(t, err)

	saved, err := SaveInventory(InventoryConfig{LowStockThreshold: 10, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "env-only-api-key", saved.Advisor.APIKey, "in-memory config keeps env values")

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "env-only-api-key")
	assert.NotContains(t, string(raw), "env-only-jwt-secret")
	assert.NotContains(t, string(raw), "jwt_secret")

	reloaded, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "9090", reloaded.App.Port, "existing file keys survive")
	assert.Equal(t, 5, reloaded.Inventory.PageSize)
	assert.Equal(t, 10, reloaded.Inventory.LowStockThreshold)
}
