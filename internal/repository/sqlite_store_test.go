package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"GoldLens/internal/domain/models"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpsertIndicatorIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.UpsertIndicator(ctx, &models.Indicator{Code: "US_10Y_REAL_YIELD", Name: "10-Year Real Yield", Unit: "%", Active: true})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := s.UpsertIndicator(ctx, &models.Indicator{Code: "US_10Y_REAL_YIELD", Name: "10-Year Real Yield (TIPS)", Unit: "bps", Active: false})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same indicator id, got %d and %d", first.ID, second.ID)
	}
	// Name and unit stay as created; only the active flag follows the upsert.
	if second.Name != "10-Year Real Yield" || second.Unit != "%" {
		t.Fatalf("expected original name and unit, got %q %q", second.Name, second.Unit)
	}
	if second.Active {
		t.Fatal("expected active flag to follow the upsert")
	}
}

func TestObservationUniquePerDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ind, err := s.UpsertIndicator(ctx, &models.Indicator{Code: "US_DOLLAR_INDEX", Name: "Broad Dollar Index", Active: true})
	if err != nil {
		t.Fatalf("upsert indicator: %v", err)
	}

	obs := &models.Observation{
		IndicatorID: ind.ID,
		Value:       decimal.RequireFromString("121.34"),
		Date:        day(2026, time.August, 28),
		Source:      "FRED",
	}
	if err := s.StoreObservation(ctx, obs); err != nil {
		t.Fatalf("store observation: %v", err)
	}

	dup := &models.Observation{
		IndicatorID: ind.ID,
		Value:       decimal.RequireFromString("122.00"),
		Date:        day(2026, time.August, 28),
		Source:      "FRED",
	}
	if err := s.StoreObservation(ctx, dup); err == nil {
		t.Fatal("expected unique constraint violation for duplicate date")
	}

	ok, err := s.HasObservation(ctx, ind.ID, day(2026, time.August, 28))
	if err != nil {
		t.Fatalf("has observation: %v", err)
	}
	if !ok {
		t.Fatal("expected observation to exist")
	}

	n, err := s.ObservationCount(ctx, ind.ID)
	if err != nil {
		t.Fatalf("observation count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 observation, got %d", n)
	}
}

func TestRecentObservationsOrderedDesc(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ind, err := s.UpsertIndicator(ctx, &models.Indicator{Code: "US_10Y_REAL_YIELD", Name: "10-Year Real Yield", Active: true})
	if err != nil {
		t.Fatalf("upsert indicator: %v", err)
	}

	dates := []time.Time{
		day(2026, time.August, 25),
		day(2026, time.August, 27),
		day(2026, time.August, 26),
	}
	for i, d := range dates {
		obs := &models.Observation{
			IndicatorID: ind.ID,
			Value:       decimal.NewFromInt(int64(i)),
			Date:        d,
			Source:      "FRED",
		}
		if err := s.StoreObservation(ctx, obs); err != nil {
			t.Fatalf("store observation %d: %v", i, err)
		}
	}

	got, err := s.RecentObservations(ctx, ind.ID, 2)
	if err != nil {
		t.Fatalf("recent observations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(got))
	}
	if !got[0].Date.Equal(day(2026, time.August, 27)) || !got[1].Date.Equal(day(2026, time.August, 26)) {
		t.Fatalf("unexpected order: %v, %v", got[0].Date, got[1].Date)
	}
}

func TestSignalRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ind, err := s.UpsertIndicator(ctx, &models.Indicator{Code: "US_10Y_REAL_YIELD", Name: "10-Year Real Yield", Active: true})
	if err != nil {
		t.Fatalf("upsert indicator: %v", err)
	}

	for _, d := range []time.Time{day(2026, time.August, 27), day(2026, time.August, 28)} {
		sig := &models.Signal{
			IndicatorID:   ind.ID,
			IndicatorCode: ind.Code,
			Type:          models.SignalRed,
			Reason:        "Real yields rising (gold-negative)",
			AsOfDate:      d,
			Confidence:    decimal.RequireFromString("0.7"),
		}
		if err := s.StoreSignal(ctx, sig); err != nil {
			t.Fatalf("store signal: %v", err)
		}
	}

	latest, err := s.LatestSignal(ctx, ind.ID)
	if err != nil {
		t.Fatalf("latest signal: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a signal")
	}
	if !latest.AsOfDate.Equal(day(2026, time.August, 28)) {
		t.Fatalf("expected latest as-of 2026-08-28, got %v", latest.AsOfDate)
	}
	if latest.Type != models.SignalRed {
		t.Fatalf("expected RED, got %s", latest.Type)
	}
	if !latest.Confidence.Equal(decimal.RequireFromString("0.7")) {
		t.Fatalf("expected confidence 0.7, got %s", latest.Confidence)
	}

	dup := &models.Signal{
		IndicatorID:   ind.ID,
		IndicatorCode: ind.Code,
		Type:          models.SignalGreen,
		Reason:        "Real yields falling (gold-positive)",
		AsOfDate:      day(2026, time.August, 28),
		Confidence:    decimal.RequireFromString("0.7"),
	}
	if err := s.StoreSignal(ctx, dup); err == nil {
		t.Fatal("expected unique constraint violation for duplicate signal date")
	}
}

func TestRiskSnapshotLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	none, err := s.LatestRiskSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest risk snapshot: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil snapshot on empty store")
	}

	for _, d := range []time.Time{day(2026, time.August, 27), day(2026, time.August, 28)} {
		snap := &models.RiskSnapshot{Level: models.RiskHigh, Reason: "Real yields rising while dollar strengthens", AsOfDate: d}
		if err := s.StoreRiskSnapshot(ctx, snap); err != nil {
			t.Fatalf("store risk snapshot: %v", err)
		}
	}

	latest, err := s.LatestRiskSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest risk snapshot: %v", err)
	}
	if latest == nil || !latest.AsOfDate.Equal(day(2026, time.August, 28)) {
		t.Fatalf("unexpected latest snapshot: %+v", latest)
	}
}

func TestPriceHistoryWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		p := &models.PricePoint{
			Date:   day(2026, time.August, i),
			Price:  decimal.NewFromInt(int64(3300 + i)),
			Source: "goldpricez",
		}
		if err := s.StorePricePoint(ctx, p); err != nil {
			t.Fatalf("store price point %d: %v", i, err)
		}
	}

	got, err := s.PriceHistory(ctx, day(2026, time.August, 3), 100)
	if err != nil {
		t.Fatalf("price history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if !got[0].Date.Equal(day(2026, time.August, 3)) {
		t.Fatalf("expected ascending from 2026-08-03, got %v", got[0].Date)
	}

	ok, err := s.HasPricePoint(ctx, day(2026, time.August, 5))
	if err != nil {
		t.Fatalf("has price point: %v", err)
	}
	if !ok {
		t.Fatal("expected price point for 2026-08-05")
	}
}
