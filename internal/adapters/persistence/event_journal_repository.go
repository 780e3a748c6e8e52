package persistence

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/shared"
)

// JournalEntry is one applied or rejected event
type JournalEntry struct {
	Sequence int
	Kind     string
	Command  string
	Accepted bool
	Error    string
}

// GormEventJournalRepository appends every event of a run to the journal
type GormEventJournalRepository struct {
	db    *gorm.DB
	clock shared.Clock
	runID string

	mu  sync.Mutex
	seq int
}

// NewGormEventJournalRepository creates a journal bound to runID
func NewGormEventJournalRepository(db *gorm.DB, runID string, clock shared.Clock) *GormEventJournalRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormEventJournalRepository{db: db, clock: clock, runID: runID}
}

// Append stores one event outcome with the next sequence number
func (r *GormEventJournalRepository) Append(ctx context.Context, kind, command string, applyErr error) error {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	model := &EventJournalModel{
		RunID:     r.runID,
		Sequence:  seq,
		Kind:      kind,
		Command:   command,
		Accepted:  applyErr == nil,
		AppliedAt: r.clock.Now(),
	}
	if applyErr != nil {
		model.Error = applyErr.Error()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to journal event %d: %w", seq, err)
	}
	return nil
}

// FindByRun returns the journal of a run in application order
func (r *GormEventJournalRepository) FindByRun(ctx context.Context, runID string) ([]JournalEntry, error) {
	var models []EventJournalModel
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).Order("sequence ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	entries := make([]JournalEntry, len(models))
	for i, m := range models {
		entries[i] = JournalEntry{
			Sequence: m.Sequence,
			Kind:     m.Kind,
			Command:  m.Command,
			Accepted: m.Accepted,
			Error:    m.Error,
		}
	}
	return entries, nil
}

// JournalMiddleware records the outcome of every event. A journal write
// failure is logged and never changes the event's own result.
func JournalMiddleware(journal *GormEventJournalRepository) simulation.Middleware {
	return func(ctx context.Context, ev simulation.Event, next simulation.HandlerFunc) error {
		err := next(ctx, ev)
		if jerr := journal.Append(ctx, ev.Kind(), ev.String(), err); jerr != nil {
			common.LoggerFromContext(ctx).Log("ERROR", jerr.Error(), nil)
		}
		return err
	}
}
