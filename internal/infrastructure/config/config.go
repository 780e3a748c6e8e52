package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Warehouse     WarehouseConfig     `mapstructure:"warehouse"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Daemon        DaemonConfig        `mapstructure:"daemon"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Replay        ReplayConfig        `mapstructure:"replay"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/warehouse")
	}

	// WH_WAREHOUSE_TRAVERSAL_TABLE, WH_DATABASE_TYPE, ...
	v.SetEnvPrefix("WH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	// Read config file (optional - don't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DATABASE_URL may carry the full connection string without the WH_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads configuration or returns a default config on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		defaultCfg := &Config{}
		SetDefaults(defaultCfg)
		return defaultCfg
	}
	return cfg
}

// bindEnvKeys registers keys that have no config file entry so AutomaticEnv
// picks them up during Unmarshal
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"warehouse.traversal_table",
		"warehouse.translation_table",
		"warehouse.initial_stock",
		"warehouse.completion_log",
		"warehouse.final_stock",
		"warehouse.batch_size",
		"warehouse.skip_startup_sweep",
		"database.enabled",
		"database.type",
		"database.url",
		"database.path",
		"logging.level",
		"logging.format",
		"logging.output",
		"logging.file_path",
		"logging.persist",
		"metrics.enabled",
		"metrics.port",
		"daemon.socket_path",
		"notifications.enabled",
		"notifications.url",
		"replay.events_per_second",
	} {
		_ = v.BindEnv(key)
	}
}
