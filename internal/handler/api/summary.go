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

// SummaryHandler composes the weekly digest: the latest risk verdict plus the
// most recent signal per indicator.
type SummaryHandler struct {
	logger *xlogger.Logger
	store  domrepo.Store
}

func NewSummaryHandler(logger *xlogger.Logger, store domrepo.Store) *SummaryHandler {
	return &SummaryHandler{logger: logger, store: store}
}

func (h *SummaryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/summary/weekly", h.Weekly)
}

func (h *SummaryHandler) Weekly(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues("summary_weekly").Observe(time.Since(start).Seconds()) }()

	ctx := c.Request().Context()
	snap, err := h.store.LatestRiskSnapshot(ctx)
	if err != nil {
		metrics.APIErrors.WithLabelValues("summary_weekly").Inc()
		h.logger.Error("risk lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if snap == nil {
		return xhttp.NotFoundResponse(c, "No risk snapshot available yet")
	}

	signals, err := h.store.LatestSignals(ctx)
	if err != nil {
		metrics.APIErrors.WithLabelValues("summary_weekly").Inc()
		h.logger.Error("signal lookup error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	views := make([]models.SummarySignalView, 0, len(signals))
	for _, sig := range signals {
		views = append(views, models.SummarySignalView{
			Code:       sig.IndicatorCode,
			Signal:     sig.Type,
			Confidence: sig.Confidence,
		})
	}

	return xhttp.SuccessResponse(c, models.WeeklySummaryView{
		WeekEnding: util.FormatDate(time.Now()),
		GoldRisk:   models.SummaryRiskView{RiskLevel: snap.Level, Reason: snap.Reason},
		Indicators: views,
	})
}
