package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

const (
	RunStatusRunning  = "RUNNING"
	RunStatusFinished = "FINISHED"
	RunStatusFailed   = "FAILED"
)

// RunRecord describes one archived simulation run
type RunRecord struct {
	ID             string
	Source         string
	Status         string
	EventsApplied  int
	EventsRejected int
	StartedAt      string
	FinishedAt     string
}

// GormRunRepository persists run bookkeeping
type GormRunRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormRunRepository creates a run repository
// If clock is nil, uses RealClock
func NewGormRunRepository(db *gorm.DB, clock shared.Clock) *GormRunRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormRunRepository{db: db, clock: clock}
}

// Start inserts a RUNNING row for runID
func (r *GormRunRepository) Start(ctx context.Context, runID, source string) error {
	model := &RunModel{
		ID:        runID,
		Source:    source,
		Status:    RunStatusRunning,
		StartedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to start run %s: %w", runID, err)
	}
	return nil
}

// Finish marks the run finished or failed and stores its event counters
func (r *GormRunRepository) Finish(ctx context.Context, runID, status string, applied, rejected int) error {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).
		Model(&RunModel{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":          status,
			"events_applied":  applied,
			"events_rejected": rejected,
			"finished_at":     &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// FindByID returns a single run
func (r *GormRunRepository) FindByID(ctx context.Context, runID string) (*RunRecord, error) {
	var model RunModel
	err := r.db.WithContext(ctx).Where("id = ?", runID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	return runFromModel(&model), nil
}

// List returns the most recent runs first
func (r *GormRunRepository) List(ctx context.Context, limit int) ([]RunRecord, error) {
	var models []RunModel
	if err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	records := make([]RunRecord, len(models))
	for i := range models {
		records[i] = *runFromModel(&models[i])
	}
	return records, nil
}

func runFromModel(m *RunModel) *RunRecord {
	rec := &RunRecord{
		ID:             m.ID,
		Source:         m.Source,
		Status:         m.Status,
		EventsApplied:  m.EventsApplied,
		EventsRejected: m.EventsRejected,
		StartedAt:      m.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.FinishedAt != nil {
		rec.FinishedAt = m.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return rec
}
