package api

import (
	"net/http"

	domrepo "GoldLens/internal/domain/repository"
	"GoldLens/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports store reachability and price cache state.
type HealthHandler struct {
	store  domrepo.Store
	prices *usecase.PriceService
}

func NewHealthHandler(store domrepo.Store, prices *usecase.PriceService) *HealthHandler {
	return &HealthHandler{store: store, prices: prices}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	body := map[string]any{
		"status":                "ok",
		"price_cache_failures":  h.prices.ConsecutiveFailures(),
		"price_cache_populated": h.prices.Cached() != nil,
	}
	if err := h.store.Health(c.Request().Context()); err != nil {
		body["status"] = "degraded"
		body["store"] = err.Error()
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	return c.JSON(http.StatusOK, body)
}
