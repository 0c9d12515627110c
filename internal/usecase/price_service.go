package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"GoldLens/internal/domain/models"
	domrepo "GoldLens/internal/domain/repository"
	"GoldLens/internal/service/goldpricez"
	applogger "GoldLens/pkg/logger"
)

const priceCacheTTL = 5 * time.Minute

type cachedPrice struct {
	snapshot  *models.PriceSnapshot
	fetchedAt time.Time
}

// PriceService serves the current gold price from a single atomically
// replaced cache slot. A fresh value lives for the TTL; on upstream failure
// the last good snapshot is served marked non-live, and only a cold cache
// lets the provider error reach the caller.
type PriceService struct {
	provider domrepo.SpotPriceProvider
	metrics  domrepo.Metrics
	l        *applogger.Logger

	slot     atomic.Pointer[cachedPrice]
	failures atomic.Int64

	now func() time.Time
}

func NewPriceService(provider domrepo.SpotPriceProvider, metrics domrepo.Metrics, l *applogger.Logger) *PriceService {
	return &PriceService{
		provider: provider,
		metrics:  metrics,
		l:        l,
		now:      time.Now,
	}
}

// Latest returns the current price. Cache hits within the TTL return the
// cached snapshot unchanged without touching the upstream.
func (s *PriceService) Latest(ctx context.Context) (*models.PriceSnapshot, error) {
	cached := s.slot.Load()
	if cached != nil && s.now().Before(cached.fetchedAt.Add(priceCacheTTL)) {
		if s.l != nil {
			s.l.Debug("serving cached gold price",
				applogger.String("fetched_at", cached.fetchedAt.Format(time.RFC3339)),
			)
		}
		return cached.snapshot, nil
	}

	requestID := goldpricez.NewRequestID()
	snap, err := s.provider.Spot(ctx, requestID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("price_fetch")
		}
		if cached != nil {
			if s.l != nil {
				s.l.Warn("price fetch failed, serving stale cache",
					applogger.String("request_id", requestID),
					applogger.String("fetched_at", cached.fetchedAt.Format(time.RFC3339)),
					applogger.Error(err),
				)
			}
			stale := *cached.snapshot
			stale.Live = false
			return &stale, nil
		}
		return nil, err
	}

	s.slot.Store(&cachedPrice{snapshot: snap, fetchedAt: s.now()})
	s.failures.Store(0)
	if s.l != nil {
		s.l.Info("gold price cached",
			applogger.String("request_id", requestID),
			applogger.String("price", snap.Price.String()),
		)
	}
	return snap, nil
}

// Refresh is the scheduled warm-up path. Unlike Latest it always calls the
// upstream and counts consecutive failures for observability.
func (s *PriceService) Refresh(ctx context.Context) {
	start := s.now()
	requestID := goldpricez.NewRequestID()
	snap, err := s.provider.Spot(ctx, requestID)
	if err != nil {
		n := s.failures.Add(1)
		if s.metrics != nil {
			s.metrics.RecordError("price_refresh")
		}
		if s.l != nil {
			s.l.Warn("scheduled price refresh failed",
				applogger.String("request_id", requestID),
				applogger.Int64("consecutive_failures", n),
				applogger.Error(err),
			)
		}
		return
	}
	s.slot.Store(&cachedPrice{snapshot: snap, fetchedAt: s.now()})
	s.failures.Store(0)
	if s.metrics != nil {
		s.metrics.RecordFetch("goldpricez", s.now().Sub(start).Seconds())
	}
}

// ConsecutiveFailures reports how many scheduled refreshes have failed since
// the last success.
func (s *PriceService) ConsecutiveFailures() int64 {
	return s.failures.Load()
}

// Cached returns the slot content without triggering any fetch, or nil when
// the cache is cold.
func (s *PriceService) Cached() *models.PriceSnapshot {
	if cached := s.slot.Load(); cached != nil {
		return cached.snapshot
	}
	return nil
}
