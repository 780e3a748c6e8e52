package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// DaemonClient talks to a running warehouse daemon
type DaemonClient struct {
	conn *grpc.ClientConn
}

// NewDaemonClient connects to the daemon's unix socket
// socketPath should be a Unix domain socket path (e.g., "/tmp/warehouse-daemon.sock")
func NewDaemonClient(socketPath string) (*DaemonClient, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClient{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *DaemonClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Apply sends one command line
func (c *DaemonClient) Apply(ctx context.Context, line string) (ApplyResult, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"line": line})
	if err != nil {
		return ApplyResult{}, err
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodApply, in, out); err != nil {
		return ApplyResult{}, fmt.Errorf("failed to apply command: %w", err)
	}

	var result ApplyResult
	err = fromStruct(out, &result)
	return result, err
}

// Status fetches the queues and workers
func (c *DaemonClient) Status(ctx context.Context) (StatusReport, error) {
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodStatus, &emptypb.Empty{}, out); err != nil {
		return StatusReport{}, fmt.Errorf("failed to get status: %w", err)
	}

	var report StatusReport
	err := fromStruct(out, &report)
	return report, err
}

// Stock fetches the current stock levels
func (c *DaemonClient) Stock(ctx context.Context) (StockReport, error) {
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodStock, &emptypb.Empty{}, out); err != nil {
		return StockReport{}, fmt.Errorf("failed to get stock: %w", err)
	}

	var report StockReport
	err := fromStruct(out, &report)
	return report, err
}

// Logs fetches recent daemon log entries
func (c *DaemonClient) Logs(ctx context.Context, limit int, level string) (LogReport, error) {
	in, err := toStruct(LogQuery{Limit: limit, Level: level})
	if err != nil {
		return LogReport{}, err
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodLogs, in, out); err != nil {
		return LogReport{}, fmt.Errorf("failed to get logs: %w", err)
	}

	var report LogReport
	err = fromStruct(out, &report)
	return report, err
}
