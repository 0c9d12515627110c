package scheduler

import (
	"context"
	"fmt"
	"time"

	"GoldLens/internal/service/metrics"
	"GoldLens/internal/usecase"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 30 * time.Second

// Scheduler drives the periodic jobs: per-indicator ingestion, risk
// aggregation, price cache refresh and the daily price history snapshot.
// Every job is wrapped in SkipIfStillRunning so no job overlaps itself;
// distinct jobs may run concurrently.
type Scheduler struct {
	cron      *cron.Cron
	ingestion *usecase.Ingestion
	risk      *usecase.RiskAggregator
	prices    *usecase.PriceService
	history   *usecase.PriceHistory
	l         *applogger.Logger
}

func New(ingestion *usecase.Ingestion, risk *usecase.RiskAggregator, prices *usecase.PriceService, history *usecase.PriceHistory, l *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ingestion: ingestion,
		risk:      risk,
		prices:    prices,
		history:   history,
		l:         l,
	}
}

// RegisterAll wires the fixed daily cadence: real yield at 06:00 UTC, dollar
// index at 06:05, risk aggregation at 06:10. The ordering is a convention,
// not a dependency; aggregation reads whatever signals are stored.
func (s *Scheduler) RegisterAll(priceRefreshSpec, historySpec string) error {
	tracked := usecase.TrackedIndicators()

	if _, err := s.cron.AddFunc("0 0 6 * * *", s.ingestJob(tracked[0])); err != nil {
		return fmt.Errorf("register real yield job: %w", err)
	}
	if _, err := s.cron.AddFunc("0 5 6 * * *", s.ingestJob(tracked[1])); err != nil {
		return fmt.Errorf("register dollar index job: %w", err)
	}
	if _, err := s.cron.AddFunc("0 10 6 * * *", s.riskJob); err != nil {
		return fmt.Errorf("register risk job: %w", err)
	}
	if _, err := s.cron.AddFunc(priceRefreshSpec, s.priceRefreshJob); err != nil {
		return fmt.Errorf("register price refresh job: %w", err)
	}
	if _, err := s.cron.AddFunc(historySpec, s.historyJob); err != nil {
		return fmt.Errorf("register price history job: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.l != nil {
		s.l.Info("scheduler started")
	}
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	if s.l != nil {
		s.l.Info("scheduler stopped")
	}
}

func (s *Scheduler) ingestJob(tracked usecase.TrackedIndicator) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.ingestion.IngestLatest(ctx, tracked)
	}
}

func (s *Scheduler) riskJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	asOf := util.DateOnly(time.Now())
	if err := s.risk.ComputeAndStore(ctx, asOf); err != nil && s.l != nil {
		s.l.Error("risk aggregation job failed", applogger.Error(err))
	}
}

func (s *Scheduler) priceRefreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.prices.Refresh(ctx)
	metrics.PriceCacheFailures.Set(float64(s.prices.ConsecutiveFailures()))
}

func (s *Scheduler) historyJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.history.SnapshotToday(ctx)
}
