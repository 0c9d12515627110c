package models

// HistoryRequest bounds the gold price history window in days.
// Out-of-range values are clamped rather than rejected.
type HistoryRequest struct {
	Days int `query:"days" default:"30"`
}

// Normalize clamps Days to the supported window of 1 to 120 days.
func (r *HistoryRequest) Normalize() {
	if r.Days < 1 {
		r.Days = 1
	}
	if r.Days > 120 {
		r.Days = 120
	}
}

// SignalHistoryRequest bounds how many past signals are returned for an
// indicator.
type SignalHistoryRequest struct {
	Limit int `query:"limit" default:"30" validate:"gte=1,lte=120"`
}
