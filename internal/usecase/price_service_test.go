package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"GoldLens/internal/domain/models"

	"github.com/shopspring/decimal"
)

type fakeSpotProvider struct {
	calls int
	snaps []*models.PriceSnapshot
	errs  []error
}

func (f *fakeSpotProvider) Spot(ctx context.Context, requestID string) (*models.PriceSnapshot, error) {
	i := f.calls
	f.calls++
	if i >= len(f.snaps) {
		i = len(f.snaps) - 1
	}
	return f.snaps[i], f.errs[i]
}

func (f *fakeSpotProvider) SupportsHistory() bool { return false }

func snapAt(price string) *models.PriceSnapshot {
	return &models.PriceSnapshot{
		Price:    decimal.RequireFromString(price),
		Currency: "USD",
		Unit:     "oz",
		AsOf:     time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
		Source:   "GoldPricez",
		Live:     true,
	}
}

func unavailable(t models.PriceErrorType) error {
	return models.NewPriceUnavailable("upstream down", http.StatusBadGateway, t, "abc12345", nil)
}

func TestLatestCachesWithinTTL(t *testing.T) {
	provider := &fakeSpotProvider{
		snaps: []*models.PriceSnapshot{snapAt("3312.45")},
		errs:  []error{nil},
	}
	svc := NewPriceService(provider, nil, nil)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("first latest: %v", err)
	}
	second, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("second latest: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 upstream call within TTL, got %d", provider.calls)
	}
	if first != second {
		t.Fatal("expected the identical cached snapshot")
	}

	// past the TTL one more upstream call happens
	now = now.Add(priceCacheTTL + time.Second)
	if _, err := svc.Latest(context.Background()); err != nil {
		t.Fatalf("post-ttl latest: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 upstream calls after TTL, got %d", provider.calls)
	}
}

func TestLatestStaleFallback(t *testing.T) {
	provider := &fakeSpotProvider{
		snaps: []*models.PriceSnapshot{snapAt("3312.45"), nil},
		errs:  []error{nil, unavailable(models.PriceErrServer)},
	}
	svc := NewPriceService(provider, nil, nil)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	fresh, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("first latest: %v", err)
	}
	if !fresh.Live {
		t.Fatal("expected fresh snapshot to be live")
	}

	now = now.Add(priceCacheTTL + time.Second)
	stale, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if stale.Live {
		t.Fatal("expected stale snapshot to be marked non-live")
	}
	if !stale.Price.Equal(fresh.Price) {
		t.Fatalf("expected stale price %s, got %s", fresh.Price, stale.Price)
	}
	// the cached slot itself stays live for later fresh serves
	if cached := svc.Cached(); cached == nil || !cached.Live {
		t.Fatal("cached slot must not be mutated by stale serves")
	}
}

func TestLatestColdCachePropagatesError(t *testing.T) {
	provider := &fakeSpotProvider{
		snaps: []*models.PriceSnapshot{nil},
		errs:  []error{unavailable(models.PriceErrRateLimited)},
	}
	svc := NewPriceService(provider, nil, nil)

	_, err := svc.Latest(context.Background())
	if err == nil {
		t.Fatal("expected error on cold cache with failing upstream")
	}
	perr, ok := err.(*models.PriceUnavailableError)
	if !ok {
		t.Fatalf("expected PriceUnavailableError, got %T", err)
	}
	if perr.RecommendedStatus() != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for rate limited, got %d", perr.RecommendedStatus())
	}
}

func TestRefreshFailureCounter(t *testing.T) {
	provider := &fakeSpotProvider{
		snaps: []*models.PriceSnapshot{nil, nil, snapAt("3300.00")},
		errs:  []error{unavailable(models.PriceErrServer), unavailable(models.PriceErrServer), nil},
	}
	svc := NewPriceService(provider, nil, nil)
	ctx := context.Background()

	svc.Refresh(ctx)
	svc.Refresh(ctx)
	if got := svc.ConsecutiveFailures(); got != 2 {
		t.Fatalf("expected 2 consecutive failures, got %d", got)
	}

	svc.Refresh(ctx)
	if got := svc.ConsecutiveFailures(); got != 0 {
		t.Fatalf("expected counter reset on success, got %d", got)
	}
	if cached := svc.Cached(); cached == nil || !cached.Price.Equal(decimal.RequireFromString("3300.00")) {
		t.Fatalf("expected refreshed slot, got %+v", cached)
	}
}
