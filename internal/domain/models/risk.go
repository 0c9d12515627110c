package models

import "time"

// RiskLevel is the aggregated downside-risk verdict for gold.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskSnapshot is the daily aggregated verdict combining the signals of the
// two tracked indicators. The as-of date is globally unique: one verdict per
// calendar day.
type RiskSnapshot struct {
	ID       int64
	Level    RiskLevel
	Reason   string
	AsOfDate time.Time
}
