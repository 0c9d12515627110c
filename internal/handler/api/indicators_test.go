package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"GoldLens/internal/domain/models"
	"GoldLens/internal/repository"

	"github.com/shopspring/decimal"
)

func seedIndicator(t *testing.T, store *repository.SQLiteStore, code string) *models.Indicator {
	t.Helper()
	ind, err := store.UpsertIndicator(context.Background(), &models.Indicator{
		Code:   code,
		Name:   "US 10Y Real Yield",
		Unit:   "%",
		Active: true,
	})
	if err != nil {
		t.Fatalf("seed indicator: %v", err)
	}
	return ind
}

func TestIndicatorListAndLatest(t *testing.T) {
	store := newHandlerStore(t)
	ind := seedIndicator(t, store, "US_10Y_REAL_YIELD")
	err := store.StoreObservation(context.Background(), &models.Observation{
		IndicatorID: ind.ID,
		Value:       decimal.RequireFromString("2.15"),
		Date:        time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		Source:      "FRED",
	})
	if err != nil {
		t.Fatalf("seed observation: %v", err)
	}
	h := NewIndicatorHandler(testLogger(t), store)

	rec := serve(t, h, "/api/indicators")
	env := decodeEnvelope(t, rec)
	var list []models.IndicatorView
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Code != "US_10Y_REAL_YIELD" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = serve(t, h, "/api/indicators/US_10Y_REAL_YIELD/latest")
	env = decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var obs models.ObservationView
	if err := json.Unmarshal(env.Data, &obs); err != nil {
		t.Fatalf("decode observation: %v", err)
	}
	if obs.Value.String() != "2.15" || obs.Date != "2026-08-27" {
		t.Fatalf("unexpected observation %+v", obs)
	}
}

func TestIndicatorUnknownCode(t *testing.T) {
	h := NewIndicatorHandler(testLogger(t), newHandlerStore(t))

	for _, target := range []string{
		"/api/indicators/NOPE/latest",
		"/api/indicators/NOPE/history?days=30",
		"/api/signals/NOPE/latest",
	} {
		rec := serve(t, h, target)
		env := decodeEnvelope(t, rec)
		if env.Status != http.StatusNotFound {
			t.Fatalf("%s: expected 404 envelope, got %d", target, env.Status)
		}
	}
}

func TestLatestSignalServed(t *testing.T) {
	store := newHandlerStore(t)
	ind := seedIndicator(t, store, "US_DOLLAR_INDEX")
	err := store.StoreSignal(context.Background(), &models.Signal{
		IndicatorID:   ind.ID,
		IndicatorCode: ind.Code,
		Type:          models.SignalGreen,
		Reason:        "Dollar weakening – supportive for gold",
		AsOfDate:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Confidence:    decimal.RequireFromString("0.7"),
	})
	if err != nil {
		t.Fatalf("seed signal: %v", err)
	}
	h := NewIndicatorHandler(testLogger(t), store)

	rec := serve(t, h, "/api/signals/US_DOLLAR_INDEX/latest")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.SignalView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode signal: %v", err)
	}
	if view.SignalType != models.SignalGreen || view.AsOfDate != "2026-08-28" {
		t.Fatalf("unexpected signal %+v", view)
	}
	if view.Confidence.String() != "0.7" {
		t.Fatalf("unexpected confidence %s", view.Confidence)
	}
}

func TestIndicatorHistoryClampsDays(t *testing.T) {
	store := newHandlerStore(t)
	ind := seedIndicator(t, store, "US_10Y_REAL_YIELD")
	err := store.StoreObservation(context.Background(), &models.Observation{
		IndicatorID: ind.ID,
		Value:       decimal.RequireFromString("2.05"),
		Date:        time.Now().UTC().AddDate(0, 0, -5),
		Source:      "FRED",
	})
	if err != nil {
		t.Fatalf("seed observation: %v", err)
	}
	h := NewIndicatorHandler(testLogger(t), store)

	// An oversized window is clamped to 120 days, not rejected.
	rec := serve(t, h, "/api/indicators/US_10Y_REAL_YIELD/history?days=500")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.IndicatorHistoryView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Points) != 1 {
		t.Fatalf("unexpected points %+v", view.Points)
	}
}

func TestSignalHistoryRejectsOutOfRangeLimit(t *testing.T) {
	store := newHandlerStore(t)
	seedIndicator(t, store, "US_DOLLAR_INDEX")
	h := NewIndicatorHandler(testLogger(t), store)

	rec := serve(t, h, "/api/signals/US_DOLLAR_INDEX/history?limit=500")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 envelope, got %d", env.Status)
	}
}
