// Package tables reads the warehouse lookup tables from CSV files.
//
// Traversal rows are zone,aisle,rack,level,item in walking order.
// Translation rows are Colour,Model,Front,Rear after a header row.
// Initial stock rows are zone,aisle,rack,level,amount.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/order"
)

const slotFields = 4

// LoadLayout reads the traversal table at path
func LoadLayout(path string) (*inventory.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open traversal table: %w", err)
	}
	defer f.Close()
	return ParseLayout(f)
}

// ParseLayout reads traversal rows and builds the slot/item bijection
func ParseLayout(r io.Reader) (*inventory.Layout, error) {
	var slots []inventory.Slot
	err := eachRow(r, "traversal table", slotFields+1, false, func(line int, row []string) error {
		item := row[slotFields]
		if item == "" {
			return &ErrMalformedRow{Table: "traversal table", Line: line, Reason: "empty item"}
		}
		slots = append(slots, inventory.Slot{ID: slotID(row), Item: item})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inventory.NewLayout(slots)
}

// LoadCatalog reads the translation table at path
func LoadCatalog(path string) (*order.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation table: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog reads translation rows, skipping the header
func ParseCatalog(r io.Reader) (*order.Catalog, error) {
	var entries []order.CatalogEntry
	err := eachRow(r, "translation table", 4, true, func(line int, row []string) error {
		entries = append(entries, order.CatalogEntry{
			Variant:    order.Variant{Colour: row[0], Model: row[1]},
			FasciaPair: order.FasciaPair{Front: row[2], Rear: row[3]},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order.NewCatalog(entries)
}

// LoadInitialStock reads the initial stock table at path. A missing file
// means every slot starts at the default amount.
func LoadInitialStock(path string) ([]inventory.StockLevel, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open initial stock: %w", err)
	}
	defer f.Close()
	return ParseInitialStock(f)
}

// ParseInitialStock reads slot,amount rows
func ParseInitialStock(r io.Reader) ([]inventory.StockLevel, error) {
	var levels []inventory.StockLevel
	err := eachRow(r, "initial stock", slotFields+1, false, func(line int, row []string) error {
		amount, err := strconv.Atoi(row[slotFields])
		if err != nil {
			return &ErrMalformedRow{Table: "initial stock", Line: line, Reason: fmt.Sprintf("amount %q is not a number", row[slotFields])}
		}
		levels = append(levels, inventory.StockLevel{Slot: slotID(row), Amount: amount})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// eachRow reads r as CSV and calls fn with trimmed fields. Rows must have
// exactly width fields.
func eachRow(r io.Reader, table string, width int, header bool, fn func(line int, row []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first := true
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", table, err)
		}

		line, _ := reader.FieldPos(0)
		if first && header {
			first = false
			continue
		}
		first = false

		if len(row) != width {
			return &ErrMalformedRow{Table: table, Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", width, len(row))}
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if err := fn(line, row); err != nil {
			return err
		}
	}
}

func slotID(row []string) string {
	return strings.Join(row[:slotFields], ",")
}
