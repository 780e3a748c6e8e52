package tables

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
)

// FinalStockFile writes the end-of-run stock report: one location,amount
// row per slot, in the same order the levels are given. It satisfies
// inventory.StockSink.
type FinalStockFile struct {
	path string
}

// NewFinalStockFile creates a writer for path
func NewFinalStockFile(path string) *FinalStockFile {
	return &FinalStockFile{path: path}
}

// SaveStock replaces the file with levels
func (f *FinalStockFile) SaveStock(ctx context.Context, levels []inventory.StockLevel) error {
	out, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("failed to create final stock file: %w", err)
	}

	w := csv.NewWriter(out)
	for _, level := range levels {
		record := append(strings.Split(level.Slot, ","), strconv.Itoa(level.Amount))
		if err := w.Write(record); err != nil {
			out.Close()
			return fmt.Errorf("failed to write final stock: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		out.Close()
		return fmt.Errorf("failed to write final stock: %w", err)
	}
	return out.Close()
}
