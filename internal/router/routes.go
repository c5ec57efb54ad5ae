package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/config"
	"github.com/octobees/geosearch/internal/handler"
	"github.com/octobees/geosearch/internal/metrics"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
)

// Search routes that consume the search rate limit.
const (
	PathPage      = "/"
	PathAPISearch = "/api/search"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Page   *handler.PageHandler
	Search *handler.SearchHandler
	Places *handler.PlacesHandler
}

// Register wires all HTTP routes. Session bound routes share the session middleware.
func Register(e *echo.Echo, cfg *config.Config, session echo.MiddlewareFunc, m *metrics.Metrics, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	if handlers.Places != nil {
		e.GET("/places", handlers.Places.List)
	}

	limiter := middlewarepkg.SearchRateLimiter(cfg.RateLimitSearch, PathPage, PathAPISearch)
	sessions := e.Group("", session)

	sessions.GET(PathPage, handlers.Page.Show)
	sessions.POST(PathPage, handlers.Page.Submit, limiter)
	sessions.GET("/download/:format", handlers.Search.Download)
	sessions.POST(PathAPISearch, handlers.Search.Search, limiter)
	sessions.GET("/api/session", handlers.Search.Session)
}
