package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/eventsource"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/logging"
	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
)

// RunLog is the daemon's logger; it also serves recent entries to clients
type RunLog interface {
	common.RunLogger
	Recent(limit int, level string) []logging.Entry
}

// DaemonServer keeps one simulation alive and applies command lines sent
// over a unix socket
type DaemonServer struct {
	sim      *simulation.Simulation
	log      RunLog
	listener net.Listener

	// Shutdown coordination
	shutdownChan chan os.Signal
	done         chan struct{}
	stopOnce     sync.Once
}

// NewDaemonServer listens on socketPath
func NewDaemonServer(sim *simulation.Simulation, log RunLog, socketPath string) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := newDaemonServer(sim, log, listener)
	signal.Notify(server.shutdownChan, os.Interrupt, syscall.SIGTERM)
	return server, nil
}

func newDaemonServer(sim *simulation.Simulation, log RunLog, listener net.Listener) *DaemonServer {
	return &DaemonServer{
		sim:          sim,
		log:          log,
		listener:     listener,
		shutdownChan: make(chan os.Signal, 1),
		done:         make(chan struct{}),
	}
}

// Start serves until a shutdown signal or Stop
func (s *DaemonServer) Start() error {
	s.log.Log("INFO", fmt.Sprintf("Daemon server listening on %s", s.listener.Addr().String()), nil)

	go s.handleShutdown()

	grpcServer := grpc.NewServer()
	RegisterWarehouseDaemonServer(grpcServer, &daemonService{server: s})

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-s.done:
		s.log.Log("INFO", "Initiating graceful shutdown of gRPC server...", nil)
		grpcServer.GracefulStop()
		return nil
	}
}

// Stop requests a graceful shutdown
func (s *DaemonServer) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *DaemonServer) handleShutdown() {
	select {
	case <-s.shutdownChan:
		s.log.Log("INFO", "Shutdown signal received, stopping daemon...", nil)
		s.Stop()
	case <-s.done:
	}
	signal.Stop(s.shutdownChan)
}

// daemonService adapts the simulation to the wire service
type daemonService struct {
	server *DaemonServer
}

func (d *daemonService) ctx(ctx context.Context) context.Context {
	return common.WithLogger(ctx, d.server.log)
}

func (d *daemonService) Apply(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	ctx = d.ctx(ctx)
	line := in.GetFields()["line"].GetStringValue()
	result := ApplyResult{Line: line}

	ev, err := eventsource.Parse(line)
	if err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", err.Error(), nil)
		result.Error = err.Error()
		return toStruct(result)
	}

	result.Kind = ev.Kind()
	if err := d.server.sim.Apply(ctx, ev); err != nil {
		result.Error = err.Error()
		return toStruct(result)
	}
	result.Accepted = true
	return toStruct(result)
}

func (d *daemonService) Status(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(toStatusReport(d.server.sim.Status()))
}

func (d *daemonService) Stock(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(toStockReport(d.server.sim.StockLevels()))
}

func (d *daemonService) Logs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var query LogQuery
	if err := fromStruct(in, &query); err != nil {
		return nil, err
	}
	return toStruct(LogReport{Entries: d.server.log.Recent(query.Limit, query.Level)})
}
