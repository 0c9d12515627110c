package usecase

import (
	"context"
	"time"

	"GoldLens/internal/domain/models"
	domrepo "GoldLens/internal/domain/repository"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"
)

const (
	requiredHistory = 30
	fetchLimit      = 100
	lookbackDays    = 90
)

// TrackedIndicator binds an indicator code to its upstream series and the
// metadata used to auto-create the indicator row.
type TrackedIndicator struct {
	Code     string
	Name     string
	Unit     string
	SeriesID string
}

// TrackedIndicators returns the two indicators this system follows, in
// ingestion order.
func TrackedIndicators() []TrackedIndicator {
	return []TrackedIndicator{
		{Code: CodeRealYield, Name: "US 10Y Real Yield", Unit: "%", SeriesID: "DFII10"},
		{Code: CodeDollarIndex, Name: "US Dollar Index (DXY)", Unit: "index", SeriesID: "DTWEXBGS"},
	}
}

// Ingestion runs the per-indicator daily fetch cycle and the one-time startup
// backfill. Provider failures during scheduled runs are absorbed: the cycle
// logs, stops early and waits for the next tick.
type Ingestion struct {
	store    domrepo.Store
	provider domrepo.MacroProvider
	signals  *SignalEngine
	metrics  domrepo.Metrics
	l        *applogger.Logger

	now func() time.Time
}

func NewIngestion(store domrepo.Store, provider domrepo.MacroProvider, signals *SignalEngine, metrics domrepo.Metrics, l *applogger.Logger) *Ingestion {
	return &Ingestion{
		store:    store,
		provider: provider,
		signals:  signals,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
	}
}

// IngestLatest runs one cycle for a tracked indicator: check existing, fetch
// the latest observation, persist, then recompute the signal for that date.
func (g *Ingestion) IngestLatest(ctx context.Context, tracked TrackedIndicator) {
	start := g.now()
	if g.l != nil {
		g.l.Info("ingestion cycle started", applogger.String("indicator", tracked.Code))
	}

	indicator, err := g.store.UpsertIndicator(ctx, &models.Indicator{
		Code:   tracked.Code,
		Name:   tracked.Name,
		Unit:   tracked.Unit,
		Active: true,
	})
	if err != nil {
		g.fail("upsert indicator failed", tracked.Code, err)
		return
	}

	today := util.DateOnly(g.now())
	exists, err := g.store.HasObservation(ctx, indicator.ID, today)
	if err != nil {
		g.fail("existence check failed", tracked.Code, err)
		return
	}
	if exists {
		if g.l != nil {
			g.l.Info("observation already present, skipping fetch",
				applogger.String("indicator", tracked.Code),
				applogger.String("date", today.Format(util.DateLayout)),
			)
		}
		return
	}

	obs, err := g.provider.LatestObservation(ctx, tracked.SeriesID)
	if err != nil {
		g.fail("provider fetch failed", tracked.Code, err)
		return
	}
	if obs == nil {
		if g.l != nil {
			g.l.Warn("no usable observation from provider",
				applogger.String("indicator", tracked.Code),
			)
		}
		return
	}

	// Re-check on the observation's own date: the provider's newest point may
	// lag today and already be stored.
	exists, err = g.store.HasObservation(ctx, indicator.ID, obs.Date)
	if err != nil {
		g.fail("existence check failed", tracked.Code, err)
		return
	}
	if exists {
		if g.l != nil {
			g.l.Info("observation already present for provider date, skipping",
				applogger.String("indicator", tracked.Code),
				applogger.String("date", obs.Date.Format(util.DateLayout)),
			)
		}
		return
	}

	obs.IndicatorID = indicator.ID
	if err := g.store.StoreObservation(ctx, obs); err != nil {
		// A racing duplicate insert lands here via the unique constraint.
		g.fail("observation insert failed", tracked.Code, err)
		return
	}
	if g.metrics != nil {
		g.metrics.RecordStored(tracked.Code, 1)
		g.metrics.RecordFetch("fred", g.now().Sub(start).Seconds())
	}
	if g.l != nil {
		g.l.Info("observation stored",
			applogger.String("indicator", tracked.Code),
			applogger.String("date", obs.Date.Format(util.DateLayout)),
			applogger.String("value", obs.Value.String()),
		)
	}

	if err := g.signals.ComputeAndStore(ctx, indicator, obs.Date); err != nil {
		g.fail("signal computation failed", tracked.Code, err)
	}
}

// BackfillIfNeeded tops up history for every tracked indicator that holds
// fewer than the required minimum of observations, then recomputes signals
// for today so a fresh deployment starts with derived state. Safe to run on
// every start.
func (g *Ingestion) BackfillIfNeeded(ctx context.Context) {
	for _, tracked := range TrackedIndicators() {
		g.backfillIndicator(ctx, tracked)
	}

	today := util.DateOnly(g.now())
	for _, tracked := range TrackedIndicators() {
		indicator, err := g.store.IndicatorByCode(ctx, tracked.Code)
		if err != nil {
			g.fail("indicator lookup failed", tracked.Code, err)
			continue
		}
		if indicator == nil {
			continue
		}
		if err := g.signals.ComputeAndStore(ctx, indicator, today); err != nil {
			g.fail("post-backfill signal failed", tracked.Code, err)
		}
	}
}

func (g *Ingestion) backfillIndicator(ctx context.Context, tracked TrackedIndicator) {
	indicator, err := g.store.UpsertIndicator(ctx, &models.Indicator{
		Code:   tracked.Code,
		Name:   tracked.Name,
		Unit:   tracked.Unit,
		Active: true,
	})
	if err != nil {
		g.fail("upsert indicator failed", tracked.Code, err)
		return
	}

	count, err := g.store.ObservationCount(ctx, indicator.ID)
	if err != nil {
		g.fail("observation count failed", tracked.Code, err)
		return
	}
	if count >= requiredHistory {
		if g.l != nil {
			g.l.Info("backfill skipped, sufficient history",
				applogger.String("indicator", tracked.Code),
				applogger.Int64("count", count),
			)
		}
		return
	}

	from := util.DateOnly(g.now()).AddDate(0, 0, -lookbackDays)
	observations, err := g.provider.Observations(ctx, tracked.SeriesID, from, fetchLimit)
	if err != nil {
		g.fail("history fetch failed", tracked.Code, err)
		return
	}
	if len(observations) == 0 {
		if g.l != nil {
			g.l.Warn("no historical observations fetched",
				applogger.String("indicator", tracked.Code),
			)
		}
		return
	}

	inserted, skipped := 0, 0
	for i := range observations {
		obs := observations[i]
		exists, err := g.store.HasObservation(ctx, indicator.ID, obs.Date)
		if err != nil {
			g.fail("existence check failed", tracked.Code, err)
			return
		}
		if exists {
			skipped++
			continue
		}
		obs.IndicatorID = indicator.ID
		if err := g.store.StoreObservation(ctx, &obs); err != nil {
			g.fail("backfill insert failed", tracked.Code, err)
			return
		}
		inserted++
	}
	if g.metrics != nil && inserted > 0 {
		g.metrics.RecordStored(tracked.Code, inserted)
	}
	if g.l != nil {
		g.l.Info("backfill completed",
			applogger.String("indicator", tracked.Code),
			applogger.Int("inserted", inserted),
			applogger.Int("skipped", skipped),
		)
	}
}

func (g *Ingestion) fail(msg, code string, err error) {
	if g.metrics != nil {
		g.metrics.RecordError("ingestion")
	}
	if g.l != nil {
		g.l.Error(msg, applogger.String("indicator", code), applogger.Error(err))
	}
}
