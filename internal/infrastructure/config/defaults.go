package config

import (
	"time"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Warehouse defaults match the file names the floor has always used
	if cfg.Warehouse.TraversalTable == "" {
		cfg.Warehouse.TraversalTable = "traversal_table.csv"
	}
	if cfg.Warehouse.TranslationTable == "" {
		cfg.Warehouse.TranslationTable = "translation.csv"
	}
	if cfg.Warehouse.InitialStock == "" {
		cfg.Warehouse.InitialStock = "initial.csv"
	}
	if cfg.Warehouse.CompletionLog == "" {
		cfg.Warehouse.CompletionLog = "orders.csv"
	}
	if cfg.Warehouse.FinalStock == "" {
		cfg.Warehouse.FinalStock = "final.csv"
	}
	if cfg.Warehouse.BatchSize == 0 {
		cfg.Warehouse.BatchSize = 4
	}
	if cfg.Warehouse.DefaultStock == 0 {
		cfg.Warehouse.DefaultStock = inventory.DefaultStock
	}
	if cfg.Warehouse.LowStockThreshold == 0 {
		cfg.Warehouse.LowStockThreshold = inventory.LowStockThreshold
	}
	if cfg.Warehouse.ReplenishAmount == 0 {
		cfg.Warehouse.ReplenishAmount = inventory.ReplenishAmount
	}

	// Replay defaults
	if cfg.Replay.Burst == 0 {
		cfg.Replay.Burst = 1
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "warehouse.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "warehouse"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "warehouse"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Daemon defaults
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = "/tmp/warehouse-daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/warehouse-daemon.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}

	// Notification defaults
	if cfg.Notifications.Exchange == "" {
		cfg.Notifications.Exchange = "warehouse_completions_fanout"
	}
	if cfg.Notifications.RoutingKey == "" {
		cfg.Notifications.RoutingKey = "request.completed"
	}
}

// Policy converts the stocking settings into the inventory policy
func (w WarehouseConfig) Policy() inventory.Policy {
	return inventory.Policy{
		DefaultStock:      w.DefaultStock,
		LowStockThreshold: w.LowStockThreshold,
		ReplenishAmount:   w.ReplenishAmount,
	}
}
