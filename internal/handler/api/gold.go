package api

import (
	"errors"
	"net/http"
	"time"

	"GoldLens/internal/domain/models"
	"GoldLens/internal/service/cache"
	"GoldLens/internal/service/metrics"
	"GoldLens/internal/service/ratelimit"
	"GoldLens/internal/usecase"
	xhttp "GoldLens/pkg/http"
	xlogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/labstack/echo/v4"
)

const (
	priceUnit   = "USD/oz"
	priceSource = "GoldPricez"

	historyCacheKey = "gold_price_history"
	historyCacheTTL = time.Minute
)

// GoldHandler serves the spot price, the aggregated risk verdict and the
// accumulated price history.
type GoldHandler struct {
	logger  *xlogger.Logger
	prices  *usecase.PriceService
	history *usecase.PriceHistory
	risk    *usecase.RiskAggregator
	cache   *cache.TTLCache
	limiter *ratelimit.Limiter
}

func NewGoldHandler(logger *xlogger.Logger, prices *usecase.PriceService, history *usecase.PriceHistory, risk *usecase.RiskAggregator) *GoldHandler {
	return &GoldHandler{
		logger:  logger,
		prices:  prices,
		history: history,
		risk:    risk,
		cache:   cache.NewTTLCache(),
		limiter: ratelimit.New(),
	}
}

func (h *GoldHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/gold-price/latest", h.LatestPrice)
	e.GET("/api/gold-risk/latest", h.LatestRisk)
	e.GET("/api/gold/price/history", h.PriceHistory)
}

// LatestPrice serves the cached spot price. The per-IP limiter shields the
// upstream, which allows 30-60 requests an hour.
func (h *GoldHandler) LatestPrice(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("gold_price_latest").Observe(time.Since(start).Seconds()) }()

	if !h.limiter.Allow(c.RealIP(), 10, 0.5) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "Too many requests")
	}

	snap, err := h.prices.Latest(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues("gold_price_latest").Inc()
		return h.priceUnavailable(c, err)
	}
	return xhttp.SuccessResponse(c, priceView(snap))
}

func (h *GoldHandler) priceUnavailable(c echo.Context, err error) error {
	var perr *models.PriceUnavailableError
	if !errors.As(err, &perr) {
		h.logger.Error("price fetch error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	status := perr.RecommendedStatus()
	h.logger.Error("gold price unavailable",
		xlogger.String("request_id", perr.RequestID),
		xlogger.String("error_type", string(perr.Type)),
		xlogger.Int("status", status),
		xlogger.Error(perr),
	)
	return c.JSON(status, models.PriceErrorView{
		Error:          http.StatusText(status),
		Message:        perr.Message,
		ErrorType:      string(perr.Type),
		RequestID:      perr.RequestID,
		ProviderStatus: perr.Status,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *GoldHandler) LatestRisk(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("gold_risk_latest").Observe(time.Since(start).Seconds()) }()

	snap, err := h.risk.Latest(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues("gold_risk_latest").Inc()
		h.logger.Error("risk lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if snap == nil {
		return xhttp.NotFoundResponse(c, "No risk snapshot available yet")
	}
	return xhttp.SuccessResponse(c, models.RiskView{
		RiskLevel: snap.Level,
		Reason:    snap.Reason,
		AsOfDate:  util.FormatDate(snap.AsOfDate),
	})
}

func (h *GoldHandler) PriceHistory(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("gold_price_history").Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Normalize()

	cacheKey := historyCacheKey + ":" + c.QueryParam("days")
	if v, ok := h.cache.Get(cacheKey); ok {
		return xhttp.SuccessResponse(c, v)
	}

	res, err := h.history.History(c.Request().Context(), req.Days)
	if err != nil {
		metrics.APIErrors.WithLabelValues("gold_price_history").Inc()
		h.logger.Error("price history error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	points := make([]models.HistoryPointView, 0, len(res.Points))
	for _, p := range res.Points {
		points = append(points, models.HistoryPointView{
			Date:  util.FormatDate(p.Date),
			Value: p.Price,
		})
	}
	view := models.PriceHistoryView{
		Unit:                priceUnit,
		Source:              priceSource,
		Points:              points,
		HistorySupported:    res.HistoricalAvailable,
		HistoricalAvailable: res.HistoricalAvailable,
		Message:             res.Message,
	}
	h.cache.Set(cacheKey, view, historyCacheTTL)
	return xhttp.SuccessResponse(c, view)
}

func priceView(snap *models.PriceSnapshot) models.PriceView {
	return models.PriceView{
		Price:           snap.Price,
		Currency:        snap.Currency,
		Unit:            snap.Unit,
		AsOf:            snap.AsOf.UTC().Format(time.RFC3339),
		Source:          snap.Source,
		IsLive:          snap.Live,
		SupportsHistory: snap.SupportsHistory,
	}
}
