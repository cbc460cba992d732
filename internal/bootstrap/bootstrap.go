package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	heatinadapter "pursue/internal/modules/heat/adapter/in"
	heatoutadapter "pursue/internal/modules/heat/adapter/out"
	heatin "pursue/internal/modules/heat/port/in"
	heatservice "pursue/internal/modules/heat/service"
	heatusecase "pursue/internal/modules/heat/usecase"
	notifyinadapter "pursue/internal/modules/notify/adapter/in"
	notifyoutadapter "pursue/internal/modules/notify/adapter/out"
	notifydomain "pursue/internal/modules/notify/domain"
	notifyin "pursue/internal/modules/notify/port/in"
	notifyservice "pursue/internal/modules/notify/service"
	notifyusecase "pursue/internal/modules/notify/usecase"
	rosterinadapter "pursue/internal/modules/roster/adapter/in"
	rosteroutadapter "pursue/internal/modules/roster/adapter/out"
	rosterservice "pursue/internal/modules/roster/service"
	rosterusecase "pursue/internal/modules/roster/usecase"
	"pursue/internal/platform/clock"
	"pursue/internal/platform/config"
	"pursue/internal/platform/id"
	"pursue/internal/platform/logging"
	"pursue/internal/platform/metrics"
	"pursue/internal/platform/sqlitedb"
	"pursue/internal/platform/tracing"
	"pursue/internal/platform/tx"
	uiapp "pursue/internal/ui/app"
)

type App struct {
	Config    config.Config
	Logger    *zap.Logger
	HeatCLI   heatinadapter.CLIHandler
	HeatHTTP  heatinadapter.HTTPHandler
	RosterCLI rosterinadapter.CLIHandler
	PushCLI   notifyinadapter.CLIHandler

	closers []func(context.Context) error
}

// lazyHeat lets roster hold a heat usecase that is only built after roster
// itself, since heat reads the roster through its own adapter.
type lazyHeat struct {
	heatin.Usecase
}

func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close(context.Background())
		}
	}()

	shutdownTracing, err := tracing.Setup(cfg.Tracing.Stdout, os.Stderr)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, shutdownTracing)

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	heatMetrics := metrics.NewHeat(registry)

	clk := clock.SystemClock{}
	ids := id.UUID{}
	loc := cfg.Location()

	// Roster tables come first: heat tables reference groups(id).
	rosterStore, err := rosteroutadapter.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("new roster store: %w", err)
	}
	heatRef := &lazyHeat{}
	rosterUC := rosterusecase.NewInteractor(
		rosterservice.NewRosterService(clk, ids, rosterStore, rosteroutadapter.NewYAMLFixtureSource()),
		heatRef,
	)

	momentumStore, err := heatoutadapter.NewSQLiteMomentumStore(db)
	if err != nil {
		return nil, fmt.Errorf("new momentum store: %w", err)
	}
	completionStore, err := heatoutadapter.NewSQLiteCompletionStore(db)
	if err != nil {
		return nil, fmt.Errorf("new completion store: %w", err)
	}

	notifyUC := newNotify(cfg, logger)
	app.closers = append(app.closers, func(context.Context) error {
		notifyUC.Close()
		return nil
	})

	rosterReader := heatoutadapter.NewRosterAdapter(rosterUC)
	heatLogger := logger.Named("heat")
	updater := heatservice.NewMomentumUpdater(clk, completionStore, momentumStore, heatLogger)
	orchestrator := heatservice.NewOrchestrator(
		rosterReader,
		heatservice.NewGCRCalculator(rosterReader, completionStore, heatLogger),
		updater,
		heatservice.NewMilestoneDispatcher(rosterReader, heatoutadapter.NewNotifyPushAdapter(notifyUC), heatMetrics, heatLogger),
		tx.NewKeyedLocker(),
		clk,
		ids,
		heatMetrics,
		heatLogger,
		heatservice.OrchestratorConfig{Concurrency: cfg.Heat.Concurrency, Location: loc},
	)
	history := heatservice.NewHistoryReader(
		rosterReader,
		momentumStore,
		heatoutadapter.NewRosterEntitlements(rosterUC),
		clk,
		loc,
		cfg.Heat.HistoryDefaultDays,
		heatMetrics,
	)
	heatUC := heatusecase.NewInteractor(orchestrator, updater, history)
	heatRef.Usecase = heatUC

	app.HeatCLI = heatinadapter.NewCLIHandler(heatUC)
	app.HeatHTTP = heatinadapter.NewHTTPHandler(heatUC, cfg.JobKey, registry, logger.Named("http"))
	app.RosterCLI = rosterinadapter.NewCLIHandler(rosterUC)
	app.PushCLI = notifyinadapter.NewCLIHandler(notifyUC)
	ok = true
	return app, nil
}

func newNotify(cfg config.Config, logger *zap.Logger) notifyin.Usecase {
	manifest := notifydomain.Manifest{Binary: cfg.Push.Binary, SHA256: cfg.Push.SHA256}
	pluginLogger := hclog.New(&hclog.LoggerOptions{
		Name:       "pursue",
		Level:      hclog.LevelFromString(cfg.Log.Level),
		Output:     os.Stderr,
		JSONFormat: cfg.Log.Format == "json",
	})
	host := notifyoutadapter.HostFor(manifest, notifyoutadapter.NewGRPCHost(pluginLogger), logger)
	return notifyusecase.NewInteractor(notifyservice.NewPushService(manifest, host, notifyservice.Options{
		RatePerSecond: cfg.Push.RatePerSecond,
		Burst:         cfg.Push.Burst,
		Timeout:       cfg.Push.Timeout,
	}, logger.Named("push")))
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

func RunTUI(app *App, viewer string, days int) error {
	model := uiapp.NewModel(app.HeatCLI, app.RosterCLI, app.PushCLI, viewer, days)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
