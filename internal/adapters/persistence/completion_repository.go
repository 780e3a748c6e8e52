package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/request"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// CompletionRecord is one archived order of a loaded request
type CompletionRecord struct {
	RequestID int
	OrderID   int
	Colour    string
	Model     string
}

// GormCompletionRepository archives loaded requests for a single run.
// It satisfies scheduler.CompletionSink.
type GormCompletionRepository struct {
	db    *gorm.DB
	clock shared.Clock
	runID string
}

// NewGormCompletionRepository creates a completion repository bound to runID
func NewGormCompletionRepository(db *gorm.DB, runID string, clock shared.Clock) *GormCompletionRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormCompletionRepository{db: db, clock: clock, runID: runID}
}

// RecordCompletion stores every order of req in one transaction
func (r *GormCompletionRepository) RecordCompletion(ctx context.Context, req *request.WorkRequest) error {
	now := r.clock.Now()
	orders := req.Orders()

	models := make([]CompletionModel, 0, len(orders))
	for _, o := range orders {
		models = append(models, CompletionModel{
			RunID:       r.runID,
			RequestID:   req.ID(),
			OrderID:     o.ID(),
			Colour:      o.Colour(),
			Model:       o.Model(),
			CompletedAt: now,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models).Error
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", req, err)
	}
	return nil
}

// FindByRun returns the archived orders of a run in completion order
func (r *GormCompletionRepository) FindByRun(ctx context.Context, runID string) ([]CompletionRecord, error) {
	var models []CompletionModel
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	records := make([]CompletionRecord, len(models))
	for i, m := range models {
		records[i] = CompletionRecord{
			RequestID: m.RequestID,
			OrderID:   m.OrderID,
			Colour:    m.Colour,
			Model:     m.Model,
		}
	}
	return records, nil
}
