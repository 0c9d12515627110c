package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GoldLens/internal/handler/api"
	"GoldLens/internal/repository"
	"GoldLens/internal/scheduler"
	"GoldLens/internal/service/fred"
	"GoldLens/internal/service/goldpricez"
	svcmetrics "GoldLens/internal/service/metrics"
	"GoldLens/internal/usecase"
	"GoldLens/pkg/config"
	xhttp "GoldLens/pkg/http"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/metrics"
	"GoldLens/pkg/util"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg *config.Config

	store      *repository.SQLiteStore
	sched      *scheduler.Scheduler
	httpServer *xhttp.Server
	l          *applogger.Logger
}

// New creates a new App instance.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := applogger.New(&applogger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: a.cfg.Log.Output,
	})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	a.l = l

	svcmetrics.Register()
	rec := metrics.NewRecorder()

	// storage
	store, err := repository.NewSQLiteStore(a.cfg.Database.Path)
	if err != nil {
		l.Error("open store failed", applogger.Error(err))
		return err
	}
	store.SetLogger(l)
	a.store = store
	if err := store.Init(ctx); err != nil {
		l.Error("init store failed", applogger.Error(err))
		return err
	}

	// upstream clients
	fredClient := fred.New(a.cfg.FRED.BaseURL, a.cfg.FRED.APIKey, a.cfg.FRED.Timeout, l)
	spotClient := goldpricez.New(a.cfg.GoldPricez.BaseURL, a.cfg.GoldPricez.APIKey, a.cfg.GoldPricez.Timeout, l)

	// usecases
	signals := usecase.NewSignalEngine(store, rec, l)
	ingestion := usecase.NewIngestion(store, fredClient, signals, rec, l)
	risk := usecase.NewRiskAggregator(store, rec, l)
	prices := usecase.NewPriceService(spotClient, rec, l)
	history := usecase.NewPriceHistory(store, prices, rec, l)

	// startup backfill, before the scheduler takes over
	ingestion.BackfillIfNeeded(ctx)
	history.BackfillIfNeeded(ctx)
	if err := risk.ComputeAndStore(ctx, util.DateOnly(time.Now())); err != nil {
		l.Warn("startup risk aggregation failed", applogger.Error(err))
	}

	a.sched = scheduler.New(ingestion, risk, prices, history, l)
	if err := a.sched.RegisterAll(a.cfg.Scheduler.PriceRefreshSpec, a.cfg.Scheduler.HistorySpec); err != nil {
		l.Error("scheduler registration failed", applogger.Error(err))
		return err
	}
	a.sched.Start()

	router := api.NewRouter(
		api.NewGoldHandler(l, prices, history, risk),
		api.NewIndicatorHandler(l, store),
		api.NewSummaryHandler(l, store),
		api.NewHealthHandler(store, prices),
	)
	a.httpServer = xhttp.NewServer(router,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("goldlens started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.store.Close(); err != nil {
		a.l.Warn("store close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
