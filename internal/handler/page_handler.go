package handler

import (
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
	"github.com/octobees/geosearch/internal/service"
	"github.com/octobees/geosearch/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// TemplateRenderer renders the embedded HTML templates for echo.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: tpl}, nil
}

// Render implements echo.Renderer.
func (r *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// DownloadLink is one export offered on the page.
type DownloadLink struct {
	Label string
	Href  string
}

// PageView is the data rendered by the search page.
type PageView struct {
	Query        string
	Phase        string
	Error        string
	BusinessType string
	City         string
	Country      string
	Columns      []string
	Rows         [][]string
	Downloads    []DownloadLink
}

// PageHandler serves the interactive search page.
type PageHandler struct {
	searcher Submitter
	logger   *slog.Logger
}

// NewPageHandler creates a new handler instance.
func NewPageHandler(searcher Submitter, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{searcher: searcher, logger: logger}
}

// Show handles GET / requests.
func (h *PageHandler) Show(c echo.Context) error {
	state, ok := middlewarepkg.SessionFromContext(c)
	if !ok {
		return c.String(http.StatusInternalServerError, "session unavailable")
	}
	return c.Render(http.StatusOK, pageTemplate, newPageView(state.Snapshot()))
}

// Submit handles POST / form submissions.
func (h *PageHandler) Submit(c echo.Context) error {
	state, ok := middlewarepkg.SessionFromContext(c)
	if !ok {
		return c.String(http.StatusInternalServerError, "session unavailable")
	}

	status := http.StatusOK
	if _, err := h.searcher.Submit(c.Request().Context(), state, c.FormValue("query")); err != nil {
		h.logger.Warn("page search failed",
			"request_id", middlewarepkg.RequestIDFromContext(c),
			"session_id", state.ID(),
			"error", err,
		)
		status = statusForError(err)
	}
	return c.Render(status, pageTemplate, newPageView(state.Snapshot()))
}

func newPageView(snap session.Snapshot) PageView {
	view := PageView{
		Query: snap.Query,
		Phase: string(snap.Phase),
		Error: service.UserMessage(snap.Err),
	}
	if snap.Result == nil {
		return view
	}

	result := snap.Result
	view.BusinessType = result.BusinessType
	view.City = result.City
	view.Country = result.Country
	view.Columns = entity.Columns
	view.Rows = make([][]string, 0, result.Table.Len())
	for _, row := range result.Table.Rows {
		view.Rows = append(view.Rows, row.Strings())
	}
	view.Downloads = []DownloadLink{
		{Label: "Download CSV", Href: downloadPath(export.FormatCSV)},
		{Label: "Download Excel", Href: downloadPath(export.FormatExcel)},
		{Label: "Download JSON", Href: downloadPath(export.FormatJSON)},
	}
	return view
}
