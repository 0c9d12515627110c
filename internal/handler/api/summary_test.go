package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"GoldLens/internal/domain/models"

	"github.com/shopspring/decimal"
)

func TestWeeklySummaryNotFoundWithoutSnapshot(t *testing.T) {
	h := NewSummaryHandler(testLogger(t), newHandlerStore(t))

	rec := serve(t, h, "/api/summary/weekly")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusNotFound {
		t.Fatalf("expected 404 envelope, got %d", env.Status)
	}
}

func TestWeeklySummaryServed(t *testing.T) {
	store := newHandlerStore(t)
	ctx := context.Background()

	err := store.StoreRiskSnapshot(ctx, &models.RiskSnapshot{
		Level:    models.RiskMedium,
		Reason:   "Mixed signals – real yields and dollar moving in opposite directions",
		AsOfDate: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed risk: %v", err)
	}

	for _, s := range []struct {
		code   string
		sig    models.SignalType
		asOf   time.Time
		reason string
	}{
		{"US_10Y_REAL_YIELD", models.SignalRed, time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), "stale"},
		{"US_10Y_REAL_YIELD", models.SignalYellow, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "current"},
		{"US_DOLLAR_INDEX", models.SignalGreen, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "current"},
	} {
		ind := seedIndicator(t, store, s.code)
		err := store.StoreSignal(ctx, &models.Signal{
			IndicatorID:   ind.ID,
			IndicatorCode: ind.Code,
			Type:          s.sig,
			Reason:        s.reason,
			AsOfDate:      s.asOf,
			Confidence:    decimal.RequireFromString("0.7"),
		})
		if err != nil {
			t.Fatalf("seed signal: %v", err)
		}
	}

	h := NewSummaryHandler(testLogger(t), store)
	rec := serve(t, h, "/api/summary/weekly")
	env := decodeEnvelope(t, rec)
	if env.Status != http.StatusOK {
		t.Fatalf("unexpected envelope status %d", env.Status)
	}
	var view models.WeeklySummaryView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.GoldRisk.RiskLevel != models.RiskMedium {
		t.Fatalf("unexpected risk %+v", view.GoldRisk)
	}
	if view.WeekEnding == "" {
		t.Fatal("expected weekEnding date")
	}
	// One entry per indicator, only the most recent signal, ordered by code.
	if len(view.Indicators) != 2 {
		t.Fatalf("unexpected indicator count %d", len(view.Indicators))
	}
	if view.Indicators[0].Code != "US_10Y_REAL_YIELD" || view.Indicators[0].Signal != models.SignalYellow {
		t.Fatalf("unexpected first entry %+v", view.Indicators[0])
	}
	if view.Indicators[1].Code != "US_DOLLAR_INDEX" || view.Indicators[1].Signal != models.SignalGreen {
		t.Fatalf("unexpected second entry %+v", view.Indicators[1])
	}
}
