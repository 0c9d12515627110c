package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Indicator is a tracked macro time series identified by a stable code
// (e.g. "US_10Y_REAL_YIELD"). Indicators are created lazily on first
// ingestion and never deleted; only Active may change after creation.
type Indicator struct {
	ID     int64
	Code   string
	Name   string
	Unit   string
	Active bool
}

// Observation is one dated, sourced value for an indicator.
// At most one observation exists per (indicator, date); the date carries
// calendar-day granularity and is normalized to UTC midnight.
type Observation struct {
	ID          int64
	IndicatorID int64
	Value       decimal.Decimal
	Date        time.Time
	Source      string
}
