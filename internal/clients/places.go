package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/metrics"
)

// Places API status values.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

const (
	textSearchPath = "/textsearch/json"
	detailsPath    = "/details/json"
	detailFields   = "formatted_phone_number,website"
)

// HTTPStatusError is returned when the Places API answers with a non-200 status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP Error %d: Unable to fetch data from Google Maps.", e.StatusCode)
}

// APIStatusError is returned when the Places API reports a status other than OK.
type APIStatusError struct {
	Status  string
	Message string
}

// Error implements the error interface.
func (e *APIStatusError) Error() string {
	return fmt.Sprintf("API Error: %s. Details: %s", e.Status, e.Message)
}

// TextSearchResponse is one page of the Text Search endpoint.
type TextSearchResponse struct {
	Status        string               `json:"status"`
	Results       []entity.PlaceRecord `json:"results"`
	NextPageToken string               `json:"next_page_token,omitempty"`
	ErrorMessage  string               `json:"error_message,omitempty"`
}

// DetailsResponse is the body of the Place Details endpoint.
type DetailsResponse struct {
	Status       string            `json:"status"`
	Result       entity.Enrichment `json:"result"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// PlacesClient calls the Google Places web service.
type PlacesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewPlacesClient creates a Places API client. A nil httpClient gets a 15s timeout client.
func NewPlacesClient(httpClient *http.Client, baseURL, apiKey string, m *metrics.Metrics) *PlacesClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &PlacesClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    m,
	}
}

// TextSearch fetches one page of results. pageToken is omitted when empty.
// Only transport and HTTP failures are errors; the API status is left to the caller.
func (c *PlacesClient) TextSearch(ctx context.Context, query, pageToken string) (TextSearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", c.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var page TextSearchResponse
	if err := c.getJSON(ctx, metrics.APITextSearch, textSearchPath, params, &page); err != nil {
		return TextSearchResponse{}, err
	}
	return page, nil
}

// Details looks up the phone number and website of a place.
func (c *PlacesClient) Details(ctx context.Context, placeID string) (entity.Enrichment, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", detailFields)

	var details DetailsResponse
	if err := c.getJSON(ctx, metrics.APIDetails, detailsPath, params, &details); err != nil {
		return entity.Enrichment{}, err
	}
	return details.Result, nil
}

func (c *PlacesClient) getJSON(ctx context.Context, api, path string, params url.Values, dest any) error {
	fullURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", api, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveAPICall(api, "transport_error", time.Since(start))
		return fmt.Errorf("failed to call Google Places API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ObserveAPICall(api, "http_error", time.Since(start))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		c.metrics.ObserveAPICall(api, "decode_error", time.Since(start))
		return fmt.Errorf("failed to parse Google Places response: %w", err)
	}
	c.metrics.ObserveAPICall(api, "ok", time.Since(start))
	return nil
}
