package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
	"github.com/octobees/geosearch/internal/service"
	"github.com/octobees/geosearch/internal/session"
)

// Submitter runs a search on behalf of a session.
type Submitter interface {
	Submit(ctx context.Context, state *session.State, query string) (*session.Result, error)
}

// SearchHandler exposes the JSON search API and the downloads.
type SearchHandler struct {
	searcher Submitter
	logger   *slog.Logger
}

// NewSearchHandler creates a new handler instance.
func NewSearchHandler(searcher Submitter, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{searcher: searcher, logger: logger}
}

// Search handles POST /api/search requests.
func (h *SearchHandler) Search(c echo.Context) error {
	state, ok := middlewarepkg.SessionFromContext(c)
	if !ok {
		return Error(c, http.StatusInternalServerError, "session unavailable")
	}

	var req dto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request payload")
	}

	result, err := h.searcher.Submit(c.Request().Context(), state, req.Query)
	if err != nil {
		h.logger.Warn("api search failed",
			"request_id", middlewarepkg.RequestIDFromContext(c),
			"session_id", state.ID(),
			"error", err,
		)
		return Error(c, statusForError(err), service.UserMessage(err))
	}

	return Success(c, http.StatusOK, "search completed", toSearchResponse(result))
}

// Session handles GET /api/session requests.
func (h *SearchHandler) Session(c echo.Context) error {
	state, ok := middlewarepkg.SessionFromContext(c)
	if !ok {
		return Error(c, http.StatusInternalServerError, "session unavailable")
	}

	snap := state.Snapshot()
	resp := dto.SessionResponse{
		Phase: string(snap.Phase),
		Query: snap.Query,
		Error: service.UserMessage(snap.Err),
	}
	if snap.Result != nil {
		summary := toSearchResponse(snap.Result)
		resp.Result = &summary
	}
	return Success(c, http.StatusOK, "session retrieved", resp)
}

// Download handles GET /download/:format requests.
func (h *SearchHandler) Download(c echo.Context) error {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "unsupported format, use csv, excel or json")
	}

	state, ok := middlewarepkg.SessionFromContext(c)
	if !ok {
		return Error(c, http.StatusInternalServerError, "session unavailable")
	}
	payload, ok := state.Payload(format)
	if !ok {
		return Error(c, http.StatusNotFound, "no search results to download yet")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", payload.Filename))
	return c.Blob(http.StatusOK, payload.MIMEType, payload.Data)
}

func toSearchResponse(result *session.Result) dto.SearchResponse {
	rows := make([]map[string]any, 0, result.Table.Len())
	for _, row := range result.Table.Rows {
		values := row.Values()
		record := make(map[string]any, len(entity.Columns))
		for i, col := range entity.Columns {
			record[col] = values[i]
		}
		rows = append(rows, record)
	}

	downloads := make(map[string]string, len(export.Formats))
	for _, format := range export.Formats {
		downloads[string(format)] = downloadPath(format)
	}

	return dto.SearchResponse{
		Query:        result.Query,
		BusinessType: result.BusinessType,
		City:         result.City,
		Country:      result.Country,
		RowCount:     result.Table.Len(),
		Columns:      entity.Columns,
		Rows:         rows,
		Downloads:    downloads,
	}
}

func downloadPath(format export.Format) string {
	return "/download/" + string(format)
}
