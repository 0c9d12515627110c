package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalType classifies the recent trend of an indicator with respect to gold.
type SignalType string

const (
	// SignalRed marks an adverse trend (rising consistently).
	SignalRed SignalType = "RED"
	// SignalGreen marks a supportive trend (falling consistently).
	SignalGreen SignalType = "GREEN"
	// SignalYellow marks a mixed or flat trend.
	SignalYellow SignalType = "YELLOW"
)

// Signal is a derived trend classification for one indicator on one date.
// At most one signal exists per (indicator, as-of date).
type Signal struct {
	ID            int64
	IndicatorID   int64
	IndicatorCode string
	Type          SignalType
	Reason        string
	AsOfDate      time.Time
	Confidence    decimal.Decimal
}
