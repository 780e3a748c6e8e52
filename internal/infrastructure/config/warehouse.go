package config

// WarehouseConfig holds the lookup tables and output files of a run
type WarehouseConfig struct {
	// Traversal table: zone,aisle,rack,level,item in walking order
	TraversalTable string `mapstructure:"traversal_table" validate:"required,csvfile"`

	// Translation table: Colour,Model,FrontItem,RearItem with a header row
	TranslationTable string `mapstructure:"translation_table" validate:"required,csvfile"`

	// Initial stock: zone,aisle,rack,level,amount
	InitialStock string `mapstructure:"initial_stock" validate:"required,csvfile"`

	// Append-only log of completed orders
	CompletionLog string `mapstructure:"completion_log" validate:"required"`

	// Slots whose stock differs from the default at shutdown
	FinalStock string `mapstructure:"final_stock" validate:"required"`

	// Orders per work request
	BatchSize int `mapstructure:"batch_size" validate:"min=1"`

	// Stocking policy
	DefaultStock      int `mapstructure:"default_stock" validate:"min=1"`
	LowStockThreshold int `mapstructure:"low_stock_threshold" validate:"min=0"`
	ReplenishAmount   int `mapstructure:"replenish_amount" validate:"min=1"`

	// Skip queueing replenishment for slots that start low
	SkipStartupSweep bool `mapstructure:"skip_startup_sweep"`
}

// ReplayConfig controls how fast command files are fed into the simulation
type ReplayConfig struct {
	// Events per second; 0 replays as fast as possible
	EventsPerSecond float64 `mapstructure:"events_per_second" validate:"min=0"`

	// Burst size for the replay limiter
	Burst int `mapstructure:"burst" validate:"min=1"`
}
