package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the current gold spot price as served by the price cache.
// Live reports whether the value came from a fresh upstream fetch; a stale
// cache serve sets it to false.
type PriceSnapshot struct {
	Price           decimal.Decimal
	Currency        string
	Unit            string
	AsOf            time.Time
	Source          string
	Live            bool
	SupportsHistory bool
}

// PricePoint is one dated gold price row from the opportunistically built
// history table. At most one point exists per calendar date.
type PricePoint struct {
	ID     int64
	Date   time.Time
	Price  decimal.Decimal
	Source string
}
