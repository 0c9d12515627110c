package api

import (
	"time"

	"GoldLens/internal/domain/models"
	domrepo "GoldLens/internal/domain/repository"
	"GoldLens/internal/service/metrics"
	xhttp "GoldLens/pkg/http"
	xlogger "GoldLens/pkg/logger"
	"GoldLens/pkg/util"

	"github.com/labstack/echo/v4"
)

// IndicatorHandler serves macro indicators, their observation history and the
// derived per-indicator signals.
type IndicatorHandler struct {
	logger *xlogger.Logger
	store  domrepo.Store
}

func NewIndicatorHandler(logger *xlogger.Logger, store domrepo.Store) *IndicatorHandler {
	return &IndicatorHandler{logger: logger, store: store}
}

func (h *IndicatorHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/indicators", h.List)
	e.GET("/api/indicators/:code/latest", h.LatestValue)
	e.GET("/api/indicators/:code/history", h.History)
	e.GET("/api/signals/:code/latest", h.LatestSignal)
	e.GET("/api/signals/:code/history", h.SignalHistory)
}

func (h *IndicatorHandler) List(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("indicators_list").Observe(time.Since(start).Seconds()) }()

	indicators, err := h.store.ActiveIndicators(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues("indicators_list").Inc()
		h.logger.Error("indicator list error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	views := make([]models.IndicatorView, 0, len(indicators))
	for _, ind := range indicators {
		views = append(views, models.IndicatorView{
			Code:   ind.Code,
			Name:   ind.Name,
			Unit:   ind.Unit,
			Active: ind.Active,
		})
	}
	return xhttp.SuccessResponse(c, views)
}

func (h *IndicatorHandler) LatestValue(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("indicator_latest").Observe(time.Since(start).Seconds()) }()

	ctx := c.Request().Context()
	ind, err := h.store.IndicatorByCode(ctx, c.Param("code"))
	if err != nil {
		metrics.APIErrors.WithLabelValues("indicator_latest").Inc()
		h.logger.Error("indicator lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if ind == nil {
		return xhttp.NotFoundResponse(c, "Unknown indicator code")
	}

	recent, err := h.store.RecentObservations(ctx, ind.ID, 1)
	if err != nil {
		metrics.APIErrors.WithLabelValues("indicator_latest").Inc()
		h.logger.Error("observation lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if len(recent) == 0 {
		return xhttp.NotFoundResponse(c, "No observations recorded yet")
	}
	obs := recent[0]
	return xhttp.SuccessResponse(c, models.ObservationView{
		IndicatorCode: ind.Code,
		Value:         obs.Value,
		Date:          util.FormatDate(obs.Date),
		Source:        obs.Source,
	})
}

func (h *IndicatorHandler) History(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("indicator_history").Observe(time.Since(start).Seconds()) }()

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req.Normalize()

	ctx := c.Request().Context()
	ind, err := h.store.IndicatorByCode(ctx, c.Param("code"))
	if err != nil {
		metrics.APIErrors.WithLabelValues("indicator_history").Inc()
		h.logger.Error("indicator lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if ind == nil {
		return xhttp.NotFoundResponse(c, "Unknown indicator code")
	}

	from := time.Now().UTC().AddDate(0, 0, -req.Days)
	values, err := h.store.ObservationsSince(ctx, ind.ID, from)
	if err != nil {
		metrics.APIErrors.WithLabelValues("indicator_history").Inc()
		h.logger.Error("observation history error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	points := make([]models.HistoryPointView, 0, len(values))
	for _, v := range values {
		points = append(points, models.HistoryPointView{
			Date:  util.FormatDate(v.Date),
			Value: v.Value,
		})
	}
	return xhttp.SuccessResponse(c, models.IndicatorHistoryView{
		IndicatorCode: ind.Code,
		Unit:          ind.Unit,
		Points:        points,
	})
}

func (h *IndicatorHandler) LatestSignal(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("signal_latest").Observe(time.Since(start).Seconds()) }()

	ctx := c.Request().Context()
	ind, err := h.store.IndicatorByCode(ctx, c.Param("code"))
	if err != nil {
		metrics.APIErrors.WithLabelValues("signal_latest").Inc()
		h.logger.Error("indicator lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if ind == nil {
		return xhttp.NotFoundResponse(c, "Unknown indicator code")
	}

	sig, err := h.store.LatestSignal(ctx, ind.ID)
	if err != nil {
		metrics.APIErrors.WithLabelValues("signal_latest").Inc()
		h.logger.Error("signal lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if sig == nil {
		return xhttp.NotFoundResponse(c, "No signal derived yet")
	}
	return xhttp.SuccessResponse(c, signalView(sig))
}

func (h *IndicatorHandler) SignalHistory(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("signal_history").Observe(time.Since(start).Seconds()) }()

	req := &models.SignalHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	ind, err := h.store.IndicatorByCode(ctx, c.Param("code"))
	if err != nil {
		metrics.APIErrors.WithLabelValues("signal_history").Inc()
		h.logger.Error("indicator lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if ind == nil {
		return xhttp.NotFoundResponse(c, "Unknown indicator code")
	}

	signals, err := h.store.RecentSignals(ctx, ind.ID, req.Limit)
	if err != nil {
		metrics.APIErrors.WithLabelValues("signal_history").Inc()
		h.logger.Error("signal history error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	views := make([]models.SignalView, 0, len(signals))
	for _, sig := range signals {
		views = append(views, signalView(sig))
	}
	return xhttp.ListResponse(c, views, int64(len(views)))
}

func signalView(sig *models.Signal) models.SignalView {
	return models.SignalView{
		IndicatorCode: sig.IndicatorCode,
		SignalType:    sig.Type,
		Reason:        sig.Reason,
		AsOfDate:      util.FormatDate(sig.AsOfDate),
		Confidence:    sig.Confidence,
	}
}
