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
	historyMinPoints = 7
	historyMaxDays   = 120
)

// PriceHistory builds gold price history over time by snapshotting the cached
// spot price once per calendar date. The upstream provider has no historical
// endpoint, so history only accumulates while the service runs.
type PriceHistory struct {
	store   domrepo.Store
	prices  *PriceService
	metrics domrepo.Metrics
	l       *applogger.Logger

	now func() time.Time
}

func NewPriceHistory(store domrepo.Store, prices *PriceService, metrics domrepo.Metrics, l *applogger.Logger) *PriceHistory {
	return &PriceHistory{
		store:   store,
		prices:  prices,
		metrics: metrics,
		l:       l,
		now:     time.Now,
	}
}

// SnapshotToday records the current price for today's date once. Runs of the
// same day after the first insert are no-ops; fetch failures are absorbed.
func (h *PriceHistory) SnapshotToday(ctx context.Context) {
	today := util.DateOnly(h.now())
	exists, err := h.store.HasPricePoint(ctx, today)
	if err != nil {
		h.fail("price point existence check failed", err)
		return
	}
	if exists {
		if h.l != nil {
			h.l.Debug("price point already recorded",
				applogger.String("date", today.Format(util.DateLayout)),
			)
		}
		return
	}

	snap, err := h.prices.Latest(ctx)
	if err != nil {
		h.fail("price snapshot unavailable", err)
		return
	}
	point := &models.PricePoint{Date: today, Price: snap.Price, Source: snap.Source}
	if err := h.store.StorePricePoint(ctx, point); err != nil {
		h.fail("price point insert failed", err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordStored("gold_price", 1)
	}
	if h.l != nil {
		h.l.Info("price point recorded",
			applogger.String("date", today.Format(util.DateLayout)),
			applogger.String("price", point.Price.String()),
		)
	}
}

// HistoryResult is the read-side view of stored price history.
type HistoryResult struct {
	Points              []*models.PricePoint
	HistoricalAvailable bool
	Message             string
}

// History returns up to days of accumulated price points, oldest first. The
// window is clamped to [1, 120]. An empty store yields an explanatory message
// rather than an error.
func (h *PriceHistory) History(ctx context.Context, days int) (*HistoryResult, error) {
	if days < 1 {
		days = 1
	}
	if days > historyMaxDays {
		days = historyMaxDays
	}

	from := util.DateOnly(h.now()).AddDate(0, 0, -days)
	points, err := h.store.PriceHistory(ctx, from, historyMaxDays)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &HistoryResult{
			Points:              []*models.PricePoint{},
			HistoricalAvailable: false,
			Message:             "Historical data not available. Run backfill to populate history.",
		}, nil
	}
	if len(points) < historyMinPoints && h.l != nil {
		h.l.Info("insufficient price history",
			applogger.Int("points", len(points)),
			applogger.Int("min", historyMinPoints),
		)
	}
	return &HistoryResult{Points: points, HistoricalAvailable: true}, nil
}

// BackfillIfNeeded exists for symmetry with indicator backfill. The spot
// provider cannot serve past dates, so when history is short this only
// records today's point and leaves the rest to accumulate.
func (h *PriceHistory) BackfillIfNeeded(ctx context.Context) {
	from := util.DateOnly(h.now()).AddDate(0, 0, -lookbackDays)
	points, err := h.store.PriceHistory(ctx, from, historyMaxDays)
	if err != nil {
		h.fail("price history count failed", err)
		return
	}
	if len(points) >= requiredHistory {
		if h.l != nil {
			h.l.Info("price history backfill skipped, sufficient rows",
				applogger.Int("rows", len(points)),
			)
		}
		return
	}
	if h.l != nil {
		h.l.Info("price history short, provider has no historical endpoint",
			applogger.Int("rows", len(points)),
		)
	}
	h.SnapshotToday(ctx)
}

func (h *PriceHistory) fail(msg string, err error) {
	if h.metrics != nil {
		h.metrics.RecordError("price_history")
	}
	if h.l != nil {
		h.l.Error(msg, applogger.Error(err))
	}
}
