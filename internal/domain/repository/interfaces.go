package repository

import (
	"context"
	"time"

	"GoldLens/internal/domain/models"
)

type Store interface {
	Init(ctx context.Context) error // ensure tables, health checks

	UpsertIndicator(ctx context.Context, ind *models.Indicator) (*models.Indicator, error)
	IndicatorByCode(ctx context.Context, code string) (*models.Indicator, error)
	ActiveIndicators(ctx context.Context) ([]*models.Indicator, error)

	HasObservation(ctx context.Context, indicatorID int64, date time.Time) (bool, error)
	StoreObservation(ctx context.Context, obs *models.Observation) error
	RecentObservations(ctx context.Context, indicatorID int64, limit int) ([]*models.Observation, error)
	ObservationsSince(ctx context.Context, indicatorID int64, from time.Time) ([]*models.Observation, error)
	ObservationCount(ctx context.Context, indicatorID int64) (int64, error)

	HasSignal(ctx context.Context, indicatorID int64, asOf time.Time) (bool, error)
	StoreSignal(ctx context.Context, sig *models.Signal) error
	LatestSignal(ctx context.Context, indicatorID int64) (*models.Signal, error)
	LatestSignals(ctx context.Context) ([]*models.Signal, error)
	RecentSignals(ctx context.Context, indicatorID int64, limit int) ([]*models.Signal, error)

	HasRiskSnapshot(ctx context.Context, asOf time.Time) (bool, error)
	StoreRiskSnapshot(ctx context.Context, snap *models.RiskSnapshot) error
	LatestRiskSnapshot(ctx context.Context) (*models.RiskSnapshot, error)

	HasPricePoint(ctx context.Context, date time.Time) (bool, error)
	StorePricePoint(ctx context.Context, p *models.PricePoint) error
	PriceHistory(ctx context.Context, from time.Time, limit int) ([]*models.PricePoint, error)

	Health(ctx context.Context) error // ping
	Close() error
}

// MacroProvider fetches daily observations for one upstream series.
type MacroProvider interface {
	LatestObservation(ctx context.Context, seriesID string) (*models.Observation, error)
	Observations(ctx context.Context, seriesID string, from time.Time, limit int) ([]models.Observation, error)
}

// SpotPriceProvider fetches the current spot price in one currency.
type SpotPriceProvider interface {
	Spot(ctx context.Context, requestID string) (*models.PriceSnapshot, error)
	SupportsHistory() bool
}

type Metrics interface {
	RecordFetch(source string, seconds float64)
	RecordStored(series string, n int)
	RecordSignal(code string, signal string)
	RecordRiskLevel(level string)
	RecordError(kind string)
}
