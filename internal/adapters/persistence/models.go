package persistence

import (
	"time"
)

// RunModel represents the runs table, one row per simulation run
type RunModel struct {
	ID             string     `gorm:"column:id;primaryKey;not null"`
	Source         string     `gorm:"column:source"` // command file or "daemon"
	Status         string     `gorm:"column:status;not null;default:'RUNNING'"`
	EventsApplied  int        `gorm:"column:events_applied;default:0"`
	EventsRejected int        `gorm:"column:events_rejected;default:0"`
	StartedAt      time.Time  `gorm:"column:started_at;not null"`
	FinishedAt     *time.Time `gorm:"column:finished_at"`
}

func (RunModel) TableName() string {
	return "runs"
}

// CompletionModel represents the completions table: one row per order of a
// loaded work request
type CompletionModel struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string    `gorm:"column:run_id;not null;index:idx_run_request"`
	Run         *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	RequestID   int       `gorm:"column:request_id;not null;index:idx_run_request"`
	OrderID     int       `gorm:"column:order_id;not null"`
	Colour      string    `gorm:"column:colour;not null"`
	Model       string    `gorm:"column:model;not null"`
	CompletedAt time.Time `gorm:"column:completed_at;not null"`
}

func (CompletionModel) TableName() string {
	return "completions"
}

// StockSnapshotModel represents the stock_snapshots table
// Primary key is composite: (run_id, slot)
type StockSnapshotModel struct {
	RunID   string    `gorm:"column:run_id;primaryKey;not null"`
	Run     *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Slot    string    `gorm:"column:slot;primaryKey;not null"`
	Item    string    `gorm:"column:item;not null"`
	Amount  int       `gorm:"column:amount;not null"`
	TakenAt time.Time `gorm:"column:taken_at;not null"`
}

func (StockSnapshotModel) TableName() string {
	return "stock_snapshots"
}

// EventJournalModel represents the event_journal table
type EventJournalModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Run       *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Sequence  int       `gorm:"column:sequence;not null"`
	Kind      string    `gorm:"column:kind;not null"`
	Command   string    `gorm:"column:command;type:text;not null"`
	Accepted  bool      `gorm:"column:accepted;not null"`
	Error     string    `gorm:"column:error;type:text"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (EventJournalModel) TableName() string {
	return "event_journal"
}

// RunLogModel represents the run_logs table
type RunLogModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;not null;index"`
	Run       *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Timestamp time.Time `gorm:"column:timestamp;not null"`
	Level     string    `gorm:"column:level;not null;default:'INFO'"`
	Message   string    `gorm:"column:message;type:text;not null"`
	Metadata  string    `gorm:"column:metadata;type:text"` // JSON as text
}

func (RunLogModel) TableName() string {
	return "run_logs"
}
