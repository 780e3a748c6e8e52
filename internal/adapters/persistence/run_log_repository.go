package persistence

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// RunLogEntry represents a persisted log line
type RunLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// GormRunLogRepository is a GORM-based run log store
type GormRunLogRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormRunLogRepository creates a new run log repository
// If clock is nil, uses RealClock (production behavior)
func NewGormRunLogRepository(db *gorm.DB, clock shared.Clock) *GormRunLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunLogRepository{db: db, clock: clock}
}

// Log writes a log entry. Unlike container logs nothing is deduplicated:
// repeated floor messages ("Picker a is placed in the picking queue") are
// meaningful events.
func (r *GormRunLogRepository) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	var metadataJSON string
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	entry := &RunLogModel{
		RunID:     runID,
		Timestamp: r.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetLogs retrieves logs for a run, oldest first, with an optional level filter
func (r *GormRunLogRepository) GetLogs(ctx context.Context, runID string, limit int, level *string) ([]RunLogEntry, error) {
	var models []RunLogModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	query = query.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]RunLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if model.Metadata != "" {
			if err := json.Unmarshal([]byte(model.Metadata), &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = RunLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}
