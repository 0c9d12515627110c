package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"GoldLens/internal/domain/models"
	"GoldLens/internal/repository"
	"GoldLens/internal/usecase"
	applogger "GoldLens/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type stubSpot struct {
	snap *models.PriceSnapshot
	err  error
}

func (s *stubSpot) Spot(ctx context.Context, requestID string) (*models.PriceSnapshot, error) {
	return s.snap, s.err
}

func (s *stubSpot) SupportsHistory() bool { return false }

// envelope mirrors the standard response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newHandlerStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	s, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func serve(t *testing.T, h interface{ RegisterRoutes(e *echo.Echo) }, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func newGoldHandler(t *testing.T, store *repository.SQLiteStore, spot *stubSpot) *GoldHandler {
	t.Helper()
	l := testLogger(t)
	prices := usecase.NewPriceService(spot, nil, nil)
	history := usecase.NewPriceHistory(store, prices, nil, nil)
	risk := usecase.NewRiskAggregator(store, nil, nil)
	return NewGoldHandler(l, prices, history, risk)
}

func TestLatestPriceServed(t *testing.T) {
	spot := &stubSpot{snap: &models.PriceSnapshot{
		Price:    decimal.RequireFromString("3312.45"),
		Currency: "USD",
		Unit:     "oz",
		AsOf:     time.Date(2026, 8, 28, 13, 16, 1, 0, time.UTC),
		Source:   "GoldPricez",
		Live:     true,
	}}
	h := newGoldHandler(t, newHandlerStore(t), spot)

	rec := serve(t, h, "/api/gold-price/latest")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.PriceView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Price.String() != "3312.45" || !view.IsLive {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.AsOf != "2026-08-28T13:16:01Z" {
		t.Fatalf("unexpected asOf %s", view.AsOf)
	}
}

func TestLatestPriceUnavailable(t *testing.T) {
	spot := &stubSpot{err: models.NewPriceUnavailable(
		"Rate limited by provider", http.StatusTooManyRequests, models.PriceErrRateLimited, "abc12345", nil,
	)}
	h := newGoldHandler(t, newHandlerStore(t), spot)

	rec := serve(t, h, "/api/gold-price/latest")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var view models.PriceErrorView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode error view: %v", err)
	}
	if view.ErrorType != string(models.PriceErrRateLimited) {
		t.Fatalf("unexpected error type %s", view.ErrorType)
	}
	if view.RequestID != "abc12345" {
		t.Fatalf("unexpected request id %s", view.RequestID)
	}
	if view.ProviderStatus != http.StatusTooManyRequests {
		t.Fatalf("unexpected provider status %d", view.ProviderStatus)
	}
}

func TestLatestRiskNotFound(t *testing.T) {
	h := newGoldHandler(t, newHandlerStore(t), &stubSpot{})

	rec := serve(t, h, "/api/gold-risk/latest")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusNotFound {
		t.Fatalf("expected 404 envelope, got %d", env.Status)
	}
}

func TestLatestRiskServed(t *testing.T) {
	store := newHandlerStore(t)
	asOf := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	err := store.StoreRiskSnapshot(context.Background(), &models.RiskSnapshot{
		Level:    models.RiskHigh,
		Reason:   "Both real yields and dollar strength are rising – historically adverse for gold",
		AsOfDate: asOf,
	})
	if err != nil {
		t.Fatalf("seed risk: %v", err)
	}
	h := newGoldHandler(t, store, &stubSpot{})

	rec := serve(t, h, "/api/gold-risk/latest")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.RiskView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.RiskLevel != models.RiskHigh || view.AsOfDate != "2026-08-28" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestPriceHistoryEmptyStore(t *testing.T) {
	h := newGoldHandler(t, newHandlerStore(t), &stubSpot{})

	rec := serve(t, h, "/api/gold/price/history?days=30")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.PriceHistoryView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.HistoricalAvailable {
		t.Fatal("expected historicalAvailable=false on empty store")
	}
	if view.Message == "" {
		t.Fatal("expected explanatory message")
	}
}

func TestPriceHistoryClampsDays(t *testing.T) {
	store := newHandlerStore(t)
	now := time.Now().UTC()
	for _, p := range []struct {
		daysAgo int
		price   string
	}{
		{10, "3300.5"},
		{140, "3100.5"},
	} {
		err := store.StorePricePoint(context.Background(), &models.PricePoint{
			Date:   now.AddDate(0, 0, -p.daysAgo),
			Price:  decimal.RequireFromString(p.price),
			Source: "GoldPricez",
		})
		if err != nil {
			t.Fatalf("seed price point: %v", err)
		}
	}
	h := newGoldHandler(t, store, &stubSpot{})

	// An oversized window is clamped to 120 days, not rejected.
	rec := serve(t, h, "/api/gold/price/history?days=500")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.PriceHistoryView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Points) != 1 || !view.Points[0].Value.Equal(decimal.RequireFromString("3300.5")) {
		t.Fatalf("expected only the point inside the 120 day window, got %+v", view.Points)
	}
}
