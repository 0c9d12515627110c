package models

import "github.com/shopspring/decimal"

// HTTP-facing views. Dates are rendered as "2006-01-02" strings and
// timestamps as RFC 3339; decimals marshal as strings to keep precision.

type IndicatorView struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Active bool   `json:"active"`
}

type ObservationView struct {
	IndicatorCode string          `json:"indicatorCode"`
	Value         decimal.Decimal `json:"value"`
	Date          string          `json:"date"`
	Source        string          `json:"source"`
}

type SignalView struct {
	IndicatorCode string          `json:"indicatorCode"`
	SignalType    SignalType      `json:"signalType"`
	Reason        string          `json:"reason"`
	AsOfDate      string          `json:"asOfDate"`
	Confidence    decimal.Decimal `json:"confidence"`
}

type RiskView struct {
	RiskLevel RiskLevel `json:"riskLevel"`
	Reason    string    `json:"reason"`
	AsOfDate  string    `json:"asOfDate"`
}

type PriceView struct {
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	Unit            string          `json:"unit"`
	AsOf            string          `json:"asOf"`
	Source          string          `json:"source"`
	IsLive          bool            `json:"isLive"`
	SupportsHistory bool            `json:"supportsHistory"`
}

type PriceErrorView struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	ErrorType      string `json:"errorType"`
	RequestID      string `json:"requestId"`
	ProviderStatus int    `json:"providerStatus"`
	Timestamp      string `json:"timestamp"`
}

type SummaryRiskView struct {
	RiskLevel RiskLevel `json:"riskLevel"`
	Reason    string    `json:"reason"`
}

type SummarySignalView struct {
	Code       string          `json:"code"`
	Signal     SignalType      `json:"signal"`
	Confidence decimal.Decimal `json:"confidence"`
}

type WeeklySummaryView struct {
	WeekEnding string              `json:"weekEnding"`
	GoldRisk   SummaryRiskView     `json:"goldRisk"`
	Indicators []SummarySignalView `json:"indicators"`
}

type HistoryPointView struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

type IndicatorHistoryView struct {
	IndicatorCode string             `json:"indicatorCode"`
	Unit          string             `json:"unit"`
	Points        []HistoryPointView `json:"points"`
}

type PriceHistoryView struct {
	Unit                string             `json:"unit"`
	Source              string             `json:"source"`
	Points              []HistoryPointView `json:"points"`
	HistorySupported    bool               `json:"historySupported"`
	HistoricalAvailable bool               `json:"historicalAvailable"`
	Message             string             `json:"message,omitempty"`
}
