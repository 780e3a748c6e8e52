package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// GormStockSnapshotRepository stores the final stock of a run.
// It satisfies inventory.StockSink.
type GormStockSnapshotRepository struct {
	db    *gorm.DB
	clock shared.Clock
	runID string
}

// NewGormStockSnapshotRepository creates a snapshot repository bound to runID
func NewGormStockSnapshotRepository(db *gorm.DB, runID string, clock shared.Clock) *GormStockSnapshotRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormStockSnapshotRepository{db: db, clock: clock, runID: runID}
}

// SaveStock upserts one row per level; saving twice keeps the latest amounts
func (r *GormStockSnapshotRepository) SaveStock(ctx context.Context, levels []inventory.StockLevel) error {
	if len(levels) == 0 {
		return nil
	}

	now := r.clock.Now()
	models := make([]StockSnapshotModel, len(levels))
	for i, level := range levels {
		models[i] = StockSnapshotModel{
			RunID:   r.runID,
			Slot:    level.Slot,
			Item:    level.Item,
			Amount:  level.Amount,
			TakenAt: now,
		}
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"item", "amount", "taken_at"}),
	}).Create(&models).Error
	if err != nil {
		return fmt.Errorf("failed to save stock snapshot: %w", err)
	}
	return nil
}

// FindByRun returns the saved levels of a run ordered by slot
func (r *GormStockSnapshotRepository) FindByRun(ctx context.Context, runID string) ([]inventory.StockLevel, error) {
	var models []StockSnapshotModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("slot ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock snapshot: %w", err)
	}

	levels := make([]inventory.StockLevel, len(models))
	for i, m := range models {
		levels[i] = inventory.StockLevel{Slot: m.Slot, Item: m.Item, Amount: m.Amount}
	}
	return levels, nil
}
