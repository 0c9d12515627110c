package usecase

import (
	"context"
	"time"

	"GoldLens/internal/domain/models"
	domrepo "GoldLens/internal/domain/repository"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"
)

// RiskAggregator combines the latest real-yield and dollar-index signals into
// one daily gold risk verdict using a fixed, first-match-wins decision table.
type RiskAggregator struct {
	store   domrepo.Store
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewRiskAggregator(store domrepo.Store, metrics domrepo.Metrics, l *applogger.Logger) *RiskAggregator {
	return &RiskAggregator{store: store, metrics: metrics, l: l}
}

// AggregateRisk evaluates the decision table. Rule order is load-bearing:
// edge combinations produce different output if rules are reordered.
func AggregateRisk(yieldSignal, dxySignal *models.Signal) (models.RiskLevel, string) {
	if yieldSignal == nil || dxySignal == nil {
		return models.RiskMedium, "Incomplete data – not all indicator signals are available"
	}

	y, d := yieldSignal.Type, dxySignal.Type

	if y == models.SignalRed && d == models.SignalRed {
		return models.RiskHigh, "Rising real yields and a strengthening dollar increase downside risk for gold"
	}
	if y == models.SignalGreen && d == models.SignalGreen {
		return models.RiskLow, "Easing real yields and a weakening dollar are supportive for gold"
	}
	if (y == models.SignalRed && d == models.SignalYellow) || (y == models.SignalYellow && d == models.SignalRed) {
		if y == models.SignalRed {
			return models.RiskMedium, "Rising real yields are negative for gold, while dollar trends are mixed"
		}
		return models.RiskMedium, "A strengthening dollar pressures gold, while real yield trends are mixed"
	}
	if (y == models.SignalRed && d == models.SignalGreen) || (y == models.SignalGreen && d == models.SignalRed) {
		return models.RiskMedium, "Mixed signals – one indicator is bearish while the other is supportive for gold"
	}
	if y == models.SignalYellow && d == models.SignalYellow {
		return models.RiskMedium, "Both indicators show mixed trends – uncertain outlook for gold"
	}
	return models.RiskMedium, "Partially supportive conditions – one indicator is positive while the other is mixed"
}

// ComputeAndStore aggregates the latest signals for both tracked indicators
// and persists one snapshot for asOf. Idempotent per calendar date.
func (a *RiskAggregator) ComputeAndStore(ctx context.Context, asOf time.Time) error {
	exists, err := a.store.HasRiskSnapshot(ctx, asOf)
	if err != nil {
		return err
	}
	if exists {
		if a.l != nil {
			a.l.Debug("risk snapshot already exists, skipping",
				applogger.String("as_of", asOf.Format(util.DateLayout)),
			)
		}
		return nil
	}

	yieldSignal, err := a.latestSignalByCode(ctx, CodeRealYield)
	if err != nil {
		return err
	}
	dxySignal, err := a.latestSignalByCode(ctx, CodeDollarIndex)
	if err != nil {
		return err
	}

	level, reason := AggregateRisk(yieldSignal, dxySignal)
	snap := &models.RiskSnapshot{Level: level, Reason: reason, AsOfDate: asOf}
	if err := a.store.StoreRiskSnapshot(ctx, snap); err != nil {
		return err
	}
	if a.metrics != nil {
		a.metrics.RecordRiskLevel(string(level))
	}
	if a.l != nil {
		a.l.Info("risk snapshot stored",
			applogger.String("level", string(level)),
			applogger.String("as_of", asOf.Format(util.DateLayout)),
		)
	}
	return nil
}

// Latest returns the most recent stored risk snapshot, or nil when none
// exists yet.
func (a *RiskAggregator) Latest(ctx context.Context) (*models.RiskSnapshot, error) {
	return a.store.LatestRiskSnapshot(ctx)
}

func (a *RiskAggregator) latestSignalByCode(ctx context.Context, code string) (*models.Signal, error) {
	ind, err := a.store.IndicatorByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if ind == nil {
		return nil, nil
	}
	return a.store.LatestSignal(ctx, ind.ID)
}
