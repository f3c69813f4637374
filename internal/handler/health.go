package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fairgrid/fairgrid/internal/search"
)

// Health is the liveness endpoint used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// SearchHealthHandler exposes the cached per-cluster search health.
type SearchHealthHandler struct {
	Cache *search.HealthCache
}

// Snapshot handles GET /healthz/search.  It reports whatever the cache
// currently holds; it never probes, so it is safe to poll aggressively.
func (h *SearchHealthHandler) Snapshot(c echo.Context) error {
	if h.Cache == nil {
		return c.JSON(http.StatusOK, echo.Map{"clusters": echo.Map{}})
	}
	return c.JSON(http.StatusOK, echo.Map{"clusters": h.Cache.Snapshot()})
}
