// Package router wires the HTTP endpoints to their handlers and
// middleware chains.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fairgrid/fairgrid/internal/handler"
	"github.com/fairgrid/fairgrid/internal/middleware"
)

// RegisterPublic registers the unauthenticated operational endpoints:
// liveness, search-cluster health and Prometheus metrics.
func RegisterPublic(e *echo.Echo, searchHealth *handler.SearchHealthHandler, metricsHandler http.Handler) {
	e.GET("/healthz", handler.Health)
	e.GET("/healthz/search", searchHealth.Snapshot)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
}

// RegisterAPI registers the authenticated /v1 API.  Every route requires
// a valid bearer token with an editor-grade role; the rate limiter runs
// after authentication so its per-user key strategy sees the identity.
func RegisterAPI(e *echo.Echo, events *handler.EventHandler, reindex *handler.ReindexHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "EDITOR"))
	if rateLimit != nil {
		g.Use(rateLimit)
	}

	g.POST("/events/upsert", events.Upsert)
	g.GET("/events/:id", events.Get)
	g.GET("/events/:id/editions", events.ListEditions)
	g.POST("/events/:id/reindex", reindex.Reindex)
}
