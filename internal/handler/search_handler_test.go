package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/export"
	middlewarepkg "github.com/octobees/geosearch/internal/middleware"
	"github.com/octobees/geosearch/internal/service"
	"github.com/octobees/geosearch/internal/session"
)

type stubSubmitter struct {
	result *session.Result
	err    error
	calls  int
}

func (s *stubSubmitter) Submit(ctx context.Context, state *session.State, query string) (*session.Result, error) {
	s.calls++
	gen := state.Begin(query)
	if s.err != nil {
		state.Fail(gen, s.err)
		return nil, s.err
	}
	state.Complete(gen, s.result)
	return s.result, nil
}

func sampleResult(t *testing.T) *session.Result {
	t.Helper()
	rating := 4.2
	table := entity.ResultTable{Rows: []entity.Row{
		{Name: "Cool Air", Address: "FC Road", Rating: &rating, PhoneNumber: "020 1234", Website: "N/A", URL: service.MapsURL("p1")},
		{Name: "<Chill & Fix>", Address: "MG Road", PhoneNumber: "N/A", Website: "N/A", URL: service.MapsURL("p2")},
	}}
	payloads, err := export.ExportAll(table)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return &session.Result{Query: "Find AC repair in Pune, India", BusinessType: "AC shop", City: "Pune", Country: "India", Table: table, Payloads: payloads}
}

func newSessionContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, state *session.State) echo.Context {
	c := e.NewContext(req, rec)
	c.Set(middlewarepkg.ContextKeySession, state)
	return c
}

func TestSearchHandler_Search_Success(t *testing.T) {
	submitter := &stubSubmitter{result: sampleResult(t)}
	handler := NewSearchHandler(submitter, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"Find AC repair in Pune, India"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := handler.Search(newSessionContext(e, req, rec, session.NewState("s1"))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			RowCount  int               `json:"row_count"`
			City      string            `json:"city"`
			Rows      []map[string]any  `json:"rows"`
			Downloads map[string]string `json:"downloads"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Status != "success" || payload.Data.RowCount != 2 || payload.Data.City != "Pune" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Data.Rows[0]["Rating"] != 4.2 || payload.Data.Rows[1]["Rating"] != "" {
		t.Fatalf("unexpected rows: %v", payload.Data.Rows)
	}
	if payload.Data.Downloads["excel"] != "/download/excel" {
		t.Fatalf("unexpected downloads: %v", payload.Data.Downloads)
	}
}

func TestSearchHandler_Search_Errors(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{service.ErrMissingQuery, http.StatusBadRequest, "Please provide a valid search query."},
		{service.ErrNoResults, http.StatusNotFound, "No data found. Please refine your query."},
		{&service.ExtractionIncompleteError{Fields: service.ExtractedFields{City: "Pune"}}, http.StatusUnprocessableEntity, service.MessageExtractionIncomplete + " Missing: business type, country."},
	}
	for _, tc := range cases {
		handler := NewSearchHandler(&stubSubmitter{err: tc.err}, nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":""}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		if err := handler.Search(newSessionContext(e, req, rec, session.NewState("s1"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != tc.status {
			t.Fatalf("expected %d for %v, got %d", tc.status, tc.err, rec.Code)
		}
		var payload APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.Status != "error" || payload.Message != tc.message {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	}
}

func TestSearchHandler_Session(t *testing.T) {
	state := session.NewState("s1")
	state.Complete(state.Begin("Find AC repair in Pune, India"), sampleResult(t))
	handler := NewSearchHandler(&stubSubmitter{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	if err := handler.Session(newSessionContext(e, req, rec, state)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Data struct {
			Phase  string `json:"phase"`
			Result struct {
				RowCount int `json:"row_count"`
			} `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data.Phase != "result" || payload.Data.Result.RowCount != 2 {
		t.Fatalf("unexpected session payload: %s", rec.Body.String())
	}
}

func TestSearchHandler_Download(t *testing.T) {
	state := session.NewState("s1")
	state.Complete(state.Begin("q"), sampleResult(t))
	handler := NewSearchHandler(&stubSubmitter{}, nil)

	cases := map[string]struct {
		mime     string
		filename string
	}{
		"csv":   {export.MIMECSV, "places_data.csv"},
		"excel": {export.MIMEExcel, "places_data.xlsx"},
		"json":  {export.MIMEJSON, "places_data.json"},
	}
	for format, want := range cases {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/download/"+format, nil)
		rec := httptest.NewRecorder()
		c := newSessionContext(e, req, rec, state)
		c.SetParamNames("format")
		c.SetParamValues(format)

		if err := handler.Download(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
			t.Fatalf("expected payload for %s, got %d", format, rec.Code)
		}
		if rec.Header().Get(echo.HeaderContentType) != want.mime {
			t.Fatalf("unexpected content type for %s: %s", format, rec.Header().Get(echo.HeaderContentType))
		}
		if !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), want.filename) {
			t.Fatalf("unexpected disposition for %s: %s", format, rec.Header().Get(echo.HeaderContentDisposition))
		}
	}
}

func TestSearchHandler_DownloadWithoutResult(t *testing.T) {
	handler := NewSearchHandler(&stubSubmitter{}, nil)

	for format, status := range map[string]int{"csv": http.StatusNotFound, "pdf": http.StatusBadRequest} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/download/"+format, nil)
		rec := httptest.NewRecorder()
		c := newSessionContext(e, req, rec, session.NewState("s1"))
		c.SetParamNames("format")
		c.SetParamValues(format)

		if err := handler.Download(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != status {
			t.Fatalf("expected %d for %s, got %d", status, format, rec.Code)
		}
	}
}
