package grpc

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/logging"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/tables"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/test/helpers"
)

func startDaemon(t *testing.T) *DaemonClient {
	t.Helper()

	paths := helpers.WriteTables(t)
	layout, err := tables.LoadLayout(paths.Traversal)
	require.NoError(t, err)
	catalog, err := tables.LoadCatalog(paths.Translation)
	require.NoError(t, err)

	sim, err := simulation.New(simulation.Dependencies{
		Catalog:   catalog,
		Layout:    layout,
		Policy:    inventory.DefaultPolicy(),
		BatchSize: 4,
	})
	require.NoError(t, err)

	listener := bufconn.Listen(1 << 20)
	var out bytes.Buffer
	server := newDaemonServer(sim, logging.NewProcessLogger(&out, "test-run", "debug"), listener)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()
	t.Cleanup(func() {
		server.Stop()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	client := &DaemonClient{conn: conn}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDaemon_ApplyAndStatus(t *testing.T) {
	// Arrange
	client := startDaemon(t)
	ctx := context.Background()

	// Act
	for _, line := range []string{"Order S White", "Order SE White", "Order S Red", "Order SE Red", "Picker Alice ready"} {
		result, err := client.Apply(ctx, line)
		require.NoError(t, err)
		require.True(t, result.Accepted, "%s: %s", line, result.Error)
	}

	// Assert
	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.Picking, "the waiting picker takes the request immediately")
	require.Len(t, status.Workers, 1)
	assert.Equal(t, "Alice", status.Workers[0].ID)
	assert.Equal(t, "ASSIGNED", status.Workers[0].Status)
	assert.Equal(t, 1, status.Workers[0].RequestID)
	assert.Equal(t, 5, status.EventsApplied)
	assert.Equal(t, 5, status.NextOrderID)
}

func TestDaemon_RejectsMalformedAndInvalid(t *testing.T) {
	client := startDaemon(t)
	ctx := context.Background()

	malformed, err := client.Apply(ctx, "Picker Alice dances")
	require.NoError(t, err)
	assert.False(t, malformed.Accepted)
	assert.Contains(t, malformed.Error, "could not be recognized")

	unknown, err := client.Apply(ctx, "Order GT Purple")
	require.NoError(t, err)
	assert.False(t, unknown.Accepted)
	assert.Equal(t, "order_submitted", unknown.Kind)

	logs, err := client.Logs(ctx, 10, "WARNING")
	require.NoError(t, err)
	assert.NotEmpty(t, logs.Entries)
}

func TestDaemon_Stock(t *testing.T) {
	client := startDaemon(t)

	stock, err := client.Stock(context.Background())

	require.NoError(t, err)
	require.Len(t, stock.Levels, 8)
	assert.Equal(t, StockLine{Slot: "A,1,1,0", Item: "2", Amount: 30}, stock.Levels[0])
}
