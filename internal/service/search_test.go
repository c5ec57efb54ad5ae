package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/octobees/geosearch/internal/clients"
	"github.com/octobees/geosearch/internal/entity"
)

const placesBase = "https://places.test/maps/api/place"

func newMockedSearcher(t *testing.T) (*PlaceSearcher, *httpmock.MockTransport, *[]time.Duration) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := clients.NewPlacesClient(&http.Client{Transport: transport}, placesBase, "maps-key", nil)
	var sleeps []time.Duration
	searcher := NewPlaceSearcher(client, WithSleep(func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))
	return searcher, transport, &sleeps
}

func registerPage(transport *httpmock.MockTransport, token, body string) {
	query := map[string]string{"query": "AC shop in Pune, India", "key": "maps-key"}
	if token != "" {
		query["pagetoken"] = token
	}
	transport.RegisterResponderWithQuery(http.MethodGet, placesBase+"/textsearch/json", query,
		httpmock.NewStringResponder(http.StatusOK, body))
}

var puneFields = ExtractedFields{BusinessType: "AC shop", City: "Pune", Country: "India"}

func TestPlaceSearcher_Paginates(t *testing.T) {
	searcher, transport, sleeps := newMockedSearcher(t)
	registerPage(transport, "", `{"status":"OK","results":[{"place_id":"a","name":"A"},{"place_id":"b","name":"B"}],"next_page_token":"t2"}`)
	registerPage(transport, "t2", `{"status":"OK","results":[{"place_id":"c","name":"C"}],"next_page_token":"t3"}`)
	registerPage(transport, "t3", `{"status":"OK","results":[{"place_id":"d","name":"D"}]}`)

	places, err := searcher.Search(context.Background(), puneFields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport.GetTotalCallCount() != 3 {
		t.Fatalf("expected 3 page requests, got %d", transport.GetTotalCallCount())
	}
	var ids []string
	for _, p := range places {
		ids = append(ids, p.PlaceID)
	}
	if len(ids) != 4 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" || ids[3] != "d" {
		t.Fatalf("expected pages concatenated in order, got %v", ids)
	}
	if len(*sleeps) != 2 || (*sleeps)[0] != DefaultPageTokenDelay {
		t.Fatalf("expected a %s wait before each token page, got %v", DefaultPageTokenDelay, *sleeps)
	}
}

func TestPlaceSearcher_APIStatusError(t *testing.T) {
	searcher, transport, _ := newMockedSearcher(t)
	registerPage(transport, "", `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`)

	_, err := searcher.Search(context.Background(), puneFields)
	var apiErr *clients.APIStatusError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIStatusError, got %v", err)
	}
	if err.Error() != "API Error: REQUEST_DENIED. Details: The provided API key is invalid." {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestPlaceSearcher_LaterPageFailureDiscardsResults(t *testing.T) {
	searcher, transport, _ := newMockedSearcher(t)
	registerPage(transport, "", `{"status":"OK","results":[{"place_id":"a"}],"next_page_token":"t2"}`)
	transport.RegisterResponderWithQuery(http.MethodGet, placesBase+"/textsearch/json",
		map[string]string{"query": "AC shop in Pune, India", "key": "maps-key", "pagetoken": "t2"},
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	places, err := searcher.Search(context.Background(), puneFields)
	var httpErr *clients.HTTPStatusError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected HTTPStatusError 502, got %v", err)
	}
	if places != nil {
		t.Fatalf("expected partial results to be discarded")
	}
	if UserMessage(err) != "HTTP Error 502: Unable to fetch data from Google Maps." {
		t.Fatalf("unexpected user message: %s", UserMessage(err))
	}
}

func TestPlaceSearcher_NoResults(t *testing.T) {
	searcher, transport, _ := newMockedSearcher(t)
	registerPage(transport, "", `{"status":"ZERO_RESULTS","results":[]}`)

	_, err := searcher.Search(context.Background(), puneFields)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	var apiErr *clients.APIStatusError
	if errors.As(err, &apiErr) {
		t.Fatalf("ZERO_RESULTS should not be reported as an API error: %v", err)
	}
	if UserMessage(err) != MessageNoResults {
		t.Fatalf("unexpected user message: %s", UserMessage(err))
	}
}

type fakeTextSearcher struct {
	pages []clients.TextSearchResponse
	calls int
}

func (f *fakeTextSearcher) TextSearch(ctx context.Context, query, pageToken string) (clients.TextSearchResponse, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestPlaceSearcher_CanceledWhileWaiting(t *testing.T) {
	api := &fakeTextSearcher{pages: []clients.TextSearchResponse{
		{Status: clients.StatusOK, Results: []entity.PlaceRecord{{PlaceID: "a"}}, NextPageToken: "t2"},
	}}
	searcher := NewPlaceSearcher(api, WithPageTokenDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := searcher.Search(ctx, puneFields); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if api.calls != 1 {
		t.Fatalf("expected a single page request, got %d", api.calls)
	}
}
