package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/logging"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
)

// ApplyResult is the outcome of one command sent to the daemon
type ApplyResult struct {
	Line     string `json:"line" yaml:"line"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Accepted bool   `json:"accepted" yaml:"accepted"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// WorkerReport is one worker in a status report
type WorkerReport struct {
	ID        string `json:"id" yaml:"id"`
	Role      string `json:"role" yaml:"role"`
	Status    string `json:"status" yaml:"status"`
	RequestID int    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
}

// StatusReport is the wire form of simulation.Status
type StatusReport struct {
	Picking        []int               `json:"picking" yaml:"picking"`
	Sequencing     []int               `json:"sequencing" yaml:"sequencing"`
	Loading        []int               `json:"loading" yaml:"loading"`
	LoadOrder      []int               `json:"load_order" yaml:"load_order"`
	Replenish      []string            `json:"replenish" yaml:"replenish"`
	ReadyToLoad    bool                `json:"ready_to_load" yaml:"ready_to_load"`
	Idle           map[string][]string `json:"idle" yaml:"idle"`
	Workers        []WorkerReport      `json:"workers" yaml:"workers"`
	PendingOrders  int                 `json:"pending_orders" yaml:"pending_orders"`
	NextOrderID    int                 `json:"next_order_id" yaml:"next_order_id"`
	EventsApplied  int                 `json:"events_applied" yaml:"events_applied"`
	EventsRejected int                 `json:"events_rejected" yaml:"events_rejected"`
}

// StockReport lists the stock of every slot in traversal order
type StockReport struct {
	Levels []StockLine `json:"levels" yaml:"levels"`
}

// StockLine is one slot of a stock report
type StockLine struct {
	Slot   string `json:"slot" yaml:"slot"`
	Item   string `json:"item" yaml:"item"`
	Amount int    `json:"amount" yaml:"amount"`
}

// LogReport carries recent daemon log entries
type LogReport struct {
	Entries []logging.Entry `json:"entries" yaml:"entries"`
}

// LogQuery selects log entries
type LogQuery struct {
	Limit int    `json:"limit" yaml:"limit"`
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

func toStatusReport(s simulation.Status) StatusReport {
	report := StatusReport{
		Picking:        s.Queues.Picking,
		Sequencing:     s.Queues.Sequencing,
		Loading:        s.Queues.Loading,
		LoadOrder:      s.Queues.LoadOrder,
		Replenish:      s.Queues.Replenish,
		ReadyToLoad:    s.Queues.ReadyToLoad,
		Idle:           make(map[string][]string, len(s.Queues.Idle)),
		Workers:        make([]WorkerReport, 0, len(s.Workers)),
		PendingOrders:  s.PendingOrders,
		NextOrderID:    s.NextOrderID,
		EventsApplied:  s.EventsApplied,
		EventsRejected: s.EventsRejected,
	}
	for role, ids := range s.Queues.Idle {
		report.Idle[role.String()] = ids
	}
	for _, w := range s.Workers {
		report.Workers = append(report.Workers, WorkerReport{
			ID:        w.ID,
			Role:      w.Role.String(),
			Status:    string(w.Status),
			RequestID: w.RequestID,
			Location:  w.Location,
		})
	}
	return report
}

func toStockReport(levels []inventory.StockLevel) StockReport {
	report := StockReport{Levels: make([]StockLine, len(levels))}
	for i, l := range levels {
		report.Levels[i] = StockLine{Slot: l.Slot, Item: l.Item, Amount: l.Amount}
	}
	return report
}

// toStruct converts a JSON-tagged value into a protobuf Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", v, err)
	}
	return out, nil
}

// fromStruct decodes a protobuf Struct into a JSON-tagged value
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return nil
}
