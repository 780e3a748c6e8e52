package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/andrescamacho/fascia-warehouse/internal/adapters/logging"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/messaging"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/metrics"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/persistence"
	"github.com/andrescamacho/fascia-warehouse/internal/adapters/tables"
	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
	"github.com/andrescamacho/fascia-warehouse/internal/application/scheduler"
	"github.com/andrescamacho/fascia-warehouse/internal/application/simulation"
	"github.com/andrescamacho/fascia-warehouse/internal/domain/inventory"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/config"
	"github.com/andrescamacho/fascia-warehouse/internal/infrastructure/database"
	"github.com/andrescamacho/fascia-warehouse/pkg/utils"
)

// runtime is one fully wired simulation run
type runtime struct {
	cfg    *config.Config
	runID  string
	logger *logging.ProcessLogger
	sim    *simulation.Simulation

	db      *gorm.DB
	runs    *persistence.GormRunRepository
	metrics *metrics.Server
	broker  *messaging.Connection
	logFile *os.File
}

// runOptions select the per-invocation behaviour of a run
type runOptions struct {
	mode   string // simulate or daemon
	source string // command file, "-" for stdin
	fresh  bool   // clear the completion log first
}

// stockFanout saves the final stock to every sink
type stockFanout []inventory.StockSink

func (f stockFanout) SaveStock(ctx context.Context, levels []inventory.StockLevel) error {
	var errs []error
	for _, sink := range f {
		if err := sink.SaveStock(ctx, levels); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newRuntime loads the tables and wires every enabled adapter
func newRuntime(ctx context.Context, cfg *config.Config, opts runOptions) (_ *runtime, err error) {
	rt := &runtime{cfg: cfg, runID: utils.GenerateRunID(opts.mode, opts.source)}
	defer func() {
		if err != nil {
			rt.close()
		}
	}()

	w := cfg.Warehouse
	layout, err := tables.LoadLayout(w.TraversalTable)
	if err != nil {
		return nil, err
	}
	catalog, err := tables.LoadCatalog(w.TranslationTable)
	if err != nil {
		return nil, err
	}
	initial, err := tables.LoadInitialStock(w.InitialStock)
	if err != nil {
		return nil, err
	}

	completionLog := tables.NewCompletionLog(w.CompletionLog)
	if opts.fresh {
		if err := completionLog.Clear(); err != nil {
			return nil, err
		}
	}

	completions := scheduler.MultiSink{completionLog}
	stock := stockFanout{tables.NewFinalStockFile(w.FinalStock)}
	middleware := []simulation.Middleware{simulation.CommandLogMiddleware()}
	var loggerOpts []logging.Option
	var recorder scheduler.Recorder

	if cfg.Database.Enabled {
		rt.db, err = database.Open(&cfg.Database)
		if err != nil {
			return nil, err
		}
		rt.runs = persistence.NewGormRunRepository(rt.db, nil)
		if err := rt.runs.Start(ctx, rt.runID, opts.source); err != nil {
			return nil, err
		}

		completions = append(completions, persistence.NewGormCompletionRepository(rt.db, rt.runID, nil))
		stock = append(stock, persistence.NewGormStockSnapshotRepository(rt.db, rt.runID, nil))
		middleware = append(middleware, persistence.JournalMiddleware(persistence.NewGormEventJournalRepository(rt.db, rt.runID, nil)))
		if cfg.Logging.Persist {
			loggerOpts = append(loggerOpts, logging.WithJournal(persistence.NewGormRunLogRepository(rt.db, nil)))
		}
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		floor := metrics.NewWarehouseMetricsCollector()
		events := metrics.NewEventMetricsCollector()
		if err := floor.Register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		if err := events.Register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		recorder = floor
		middleware = append(middleware, metrics.PrometheusMiddleware(events))

		rt.metrics = metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	if cfg.Notifications.Enabled {
		rt.broker, err = messaging.Dial(cfg.Notifications.URL, cfg.Notifications.Exchange)
		if err != nil {
			return nil, err
		}
		completions = append(completions, rt.broker.Publisher(cfg.Notifications.Exchange, cfg.Notifications.RoutingKey, rt.runID))
	}

	out, err := rt.logOutput()
	if err != nil {
		return nil, err
	}
	if cfg.Logging.Format == "json" {
		loggerOpts = append(loggerOpts, logging.WithJSON())
	}
	rt.logger = logging.NewProcessLogger(out, rt.runID, cfg.Logging.Level, loggerOpts...)
	if rt.metrics != nil {
		go reportServeErrors(rt.metrics.Start(), rt.logger)
	}

	rt.sim, err = simulation.New(simulation.Dependencies{
		Catalog:        catalog,
		Layout:         layout,
		InitialStock:   initial,
		Policy:         w.Policy(),
		BatchSize:      w.BatchSize,
		StartupSweep:   !w.SkipStartupSweep,
		CompletionSink: completions,
		StockSink:      stock,
		Recorder:       recorder,
		Middleware:     middleware,
	})
	if err != nil {
		return nil, err
	}

	rt.sim.Start(rt.context(ctx))
	return rt, nil
}

// reportServeErrors logs listener failures, e.g. a metrics port already in use
func reportServeErrors(errs <-chan error, logger common.RunLogger) {
	for err := range errs {
		logger.Log("ERROR", err.Error(), map[string]interface{}{
			"component": "metrics",
		})
	}
}

// context carries the run logger
func (rt *runtime) context(ctx context.Context) context.Context {
	return common.WithLogger(ctx, rt.logger)
}

func (rt *runtime) logOutput() (io.Writer, error) {
	switch rt.cfg.Logging.Output {
	case "stderr":
		return os.Stderr, nil
	case "file":
		f, err := os.OpenFile(rt.cfg.Logging.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		rt.logFile = f
		return f, nil
	}
	return os.Stdout, nil
}

// finish writes the final stock and closes the run record
func (rt *runtime) finish(ctx context.Context, runErr error) error {
	ctx = rt.context(ctx)
	shutdownErr := rt.sim.Shutdown(ctx)

	if rt.runs != nil {
		status := rt.sim.Status()
		state := persistence.RunStatusFinished
		if runErr != nil || shutdownErr != nil {
			state = persistence.RunStatusFailed
		}
		if err := rt.runs.Finish(ctx, rt.runID, state, status.EventsApplied, status.EventsRejected); err != nil {
			rt.logger.Log("ERROR", err.Error(), nil)
		}
	}

	rt.close()
	return shutdownErr
}

// close releases every resource; safe on a partially built runtime
func (rt *runtime) close() {
	if rt.logger != nil {
		rt.logger.Close()
	}
	if rt.metrics != nil {
		_ = rt.metrics.Shutdown(context.Background())
	}
	if rt.broker != nil {
		rt.broker.Close()
	}
	if rt.db != nil {
		_ = database.Close(rt.db)
	}
	if rt.logFile != nil {
		_ = rt.logFile.Close()
	}
}
