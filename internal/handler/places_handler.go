package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
)

// PlaceLister reads the place catalogue.
type PlaceLister interface {
	ListPlaces(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error)
}

// PlacesHandler exposes the place catalogue endpoint.
type PlacesHandler struct {
	service PlaceLister
	logger  *slog.Logger
}

// NewPlacesHandler creates a new handler instance.
func NewPlacesHandler(service PlaceLister, logger *slog.Logger) *PlacesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlacesHandler{service: service, logger: logger}
}

// List handles GET /places requests.
func (h *PlacesHandler) List(c echo.Context) error {
	filter := dto.PlaceFilter{
		Q:            strings.TrimSpace(c.QueryParam("q")),
		BusinessType: strings.TrimSpace(c.QueryParam("business_type")),
		City:         strings.TrimSpace(c.QueryParam("city")),
		Country:      strings.TrimSpace(c.QueryParam("country")),
		Page:         parseIntDefault(c.QueryParam("page"), 1),
		PerPage:      parseIntDefault(c.QueryParam("per_page"), 20),
	}

	if minRatingStr := strings.TrimSpace(c.QueryParam("min_rating")); minRatingStr != "" {
		minRating, err := strconv.ParseFloat(minRatingStr, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid min_rating")
		}
		filter.MinRating = &minRating
	}

	places, err := h.service.ListPlaces(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("list places failed", "request_id", middlewarepkg.RequestIDFromContext(c), "error", err)
		return Error(c, http.StatusInternalServerError, "failed to list places")
	}
	if places == nil {
		places = []entity.CatalogPlace{}
	}

	return Success(c, http.StatusOK, "places retrieved", places)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
