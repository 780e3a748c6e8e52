package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("warehouse:\n  batch_size: 4\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "traversal_table.csv", cfg.Warehouse.TraversalTable)
	assert.Equal(t, "orders.csv", cfg.Warehouse.CompletionLog)
	assert.Equal(t, 30, cfg.Warehouse.DefaultStock)
	assert.Equal(t, 5, cfg.Warehouse.LowStockThreshold)
	assert.Equal(t, 25, cfg.Warehouse.ReplenishAmount)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "request.completed", cfg.Notifications.RoutingKey)
}

func TestLoadConfig_FileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
warehouse:
  traversal_table: tables/traversal.csv
  batch_size: 2
  skip_startup_sweep: true
logging:
  level: debug
replay:
  events_per_second: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "tables/traversal.csv", cfg.Warehouse.TraversalTable)
	assert.Equal(t, 2, cfg.Warehouse.BatchSize)
	assert.True(t, cfg.Warehouse.SkipStartupSweep)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 20.0, cfg.Replay.EventsPerSecond)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("warehouse:\n  batch_size: 2\n"), 0o644))

	t.Setenv("WH_WAREHOUSE_BATCH_SIZE", "6")
	t.Setenv("DATABASE_URL", "postgresql://wh:wh@localhost:5432/wh")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Warehouse.BatchSize)
	assert.Equal(t, "postgresql://wh:wh@localhost:5432/wh", cfg.Database.URL)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "traversal table must be csv",
			mutate:  func(c *Config) { c.Warehouse.TraversalTable = "traversal.txt" },
			wantErr: "csvfile",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "oneof",
		},
		{
			name:    "file output needs a path",
			mutate:  func(c *Config) { c.Logging.Output = "file" },
			wantErr: "required_if",
		},
		{
			name:    "notifications need a url when enabled",
			mutate:  func(c *Config) { c.Notifications.Enabled = true },
			wantErr: "required_if",
		},
		{
			name:    "threshold must be below default stock",
			mutate:  func(c *Config) { c.Warehouse.LowStockThreshold = 30 },
			wantErr: "low_stock_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			SetDefaults(cfg)
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWarehouseConfig_Policy(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)

	policy := cfg.Warehouse.Policy()
	assert.Equal(t, 30, policy.DefaultStock)
	assert.Equal(t, 5, policy.LowStockThreshold)
	assert.Equal(t, 25, policy.ReplenishAmount)
}
