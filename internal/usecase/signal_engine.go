package usecase

import (
	"context"
	"time"

	"GoldLens/internal/domain/models"
	domrepo "GoldLens/internal/domain/repository"
	applogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/shopspring/decimal"
)

const (
	CodeRealYield   = "US_10Y_REAL_YIELD"
	CodeDollarIndex = "US_DOLLAR_INDEX"

	// trend window
	signalWindow = 3
)

var (
	confidenceHigh   = decimal.RequireFromString("0.7")
	confidenceMedium = decimal.RequireFromString("0.5")
)

// SignalEngine derives per-indicator trend signals from recent observations
// and persists one signal per indicator per day.
type SignalEngine struct {
	store   domrepo.Store
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewSignalEngine(store domrepo.Store, metrics domrepo.Metrics, l *applogger.Logger) *SignalEngine {
	return &SignalEngine{store: store, metrics: metrics, l: l}
}

// DeriveSignal classifies the trend in observations, which must be ordered
// most recent first. It returns nil when fewer than two points are available;
// that is a normal outcome, not an error.
func DeriveSignal(indicatorCode string, observations []*models.Observation, asOf time.Time) *models.Signal {
	if len(observations) < 2 {
		return nil
	}

	rising, falling := 0, 0
	for i := 0; i < len(observations)-1; i++ {
		switch observations[i].Value.Cmp(observations[i+1].Value) {
		case 1:
			rising++
		case -1:
			falling++
		}
	}

	var (
		typ        models.SignalType
		reason     string
		confidence decimal.Decimal
	)
	switch {
	case rising >= 2 && len(observations) >= 3:
		typ, reason, confidence = models.SignalRed, redReason(indicatorCode), confidenceHigh
	case falling >= 2:
		typ, reason, confidence = models.SignalGreen, greenReason(indicatorCode), confidenceHigh
	default:
		typ, reason, confidence = models.SignalYellow, yellowReason(indicatorCode), confidenceMedium
	}

	return &models.Signal{
		IndicatorCode: indicatorCode,
		Type:          typ,
		Reason:        reason,
		AsOfDate:      asOf,
		Confidence:    confidence,
	}
}

func redReason(code string) string {
	switch code {
	case CodeRealYield:
		return "Real yields rising consistently – historically bearish for gold"
	case CodeDollarIndex:
		return "A strengthening dollar tends to pressure gold prices"
	default:
		return "Indicator rising consistently – negative for gold"
	}
}

func greenReason(code string) string {
	switch code {
	case CodeRealYield:
		return "Real yields easing – supportive for gold"
	case CodeDollarIndex:
		return "A weakening dollar supports gold prices"
	default:
		return "Indicator falling – supportive for gold"
	}
}

func yellowReason(code string) string {
	switch code {
	case CodeRealYield:
		return "Real yields mixed – potential correction risk"
	case CodeDollarIndex:
		return "Dollar index mixed – uncertain impact on gold"
	default:
		return "Indicator mixed – uncertain outlook"
	}
}

// ComputeAndStore derives and persists the signal for indicator as of asOf.
// Idempotent: an existing signal for the date makes this a no-op.
func (e *SignalEngine) ComputeAndStore(ctx context.Context, indicator *models.Indicator, asOf time.Time) error {
	exists, err := e.store.HasSignal(ctx, indicator.ID, asOf)
	if err != nil {
		return err
	}
	if exists {
		if e.l != nil {
			e.l.Debug("signal already exists, skipping",
				applogger.String("indicator", indicator.Code),
				applogger.String("as_of", asOf.Format(util.DateLayout)),
			)
		}
		return nil
	}

	recent, err := e.store.RecentObservations(ctx, indicator.ID, signalWindow)
	if err != nil {
		return err
	}

	sig := DeriveSignal(indicator.Code, recent, asOf)
	if sig == nil {
		if e.l != nil {
			e.l.Info("not enough observations for signal",
				applogger.String("indicator", indicator.Code),
				applogger.Int("points", len(recent)),
			)
		}
		return nil
	}
	sig.IndicatorID = indicator.ID

	if err := e.store.StoreSignal(ctx, sig); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.RecordSignal(indicator.Code, string(sig.Type))
	}
	if e.l != nil {
		e.l.Info("signal stored",
			applogger.String("indicator", indicator.Code),
			applogger.String("type", string(sig.Type)),
			applogger.String("as_of", asOf.Format(util.DateLayout)),
		)
	}
	return nil
}
