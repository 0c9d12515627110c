package api

import "github.com/labstack/echo/v4"

// Router bundles all API handlers behind one route registrar.
type Router struct {
	handlers []interface{ RegisterRoutes(e *echo.Echo) }
}

func NewRouter(gold *GoldHandler, indicators *IndicatorHandler, summary *SummaryHandler, health *HealthHandler) *Router {
	return &Router{handlers: []interface{ RegisterRoutes(e *echo.Echo) }{gold, indicators, summary, health}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}
