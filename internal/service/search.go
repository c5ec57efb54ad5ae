package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/octobees/geosearch/internal/clients"
	"github.com/octobees/geosearch/internal/entity"
)

// DefaultPageTokenDelay is how long a next_page_token needs before it becomes valid.
const DefaultPageTokenDelay = 2 * time.Second

// TextSearcher fetches one page of Text Search results.
type TextSearcher interface {
	TextSearch(ctx context.Context, query, pageToken string) (clients.TextSearchResponse, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// PlaceSearcher walks every Text Search page of a query.
type PlaceSearcher struct {
	api    TextSearcher
	delay  time.Duration
	sleep  SleepFunc
	logger *slog.Logger
}

// PlaceSearcherOption customises a PlaceSearcher.
type PlaceSearcherOption func(*PlaceSearcher)

// WithPageTokenDelay overrides the wait between pages.
func WithPageTokenDelay(d time.Duration) PlaceSearcherOption {
	return func(s *PlaceSearcher) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithSleep replaces the function used to wait between pages.
func WithSleep(fn SleepFunc) PlaceSearcherOption {
	return func(s *PlaceSearcher) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithSearchLogger sets the searcher logger.
func WithSearchLogger(logger *slog.Logger) PlaceSearcherOption {
	return func(s *PlaceSearcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPlaceSearcher creates a searcher using the given Text Search API.
func NewPlaceSearcher(api TextSearcher, opts ...PlaceSearcherOption) *PlaceSearcher {
	s := &PlaceSearcher{
		api:    api,
		delay:  DefaultPageTokenDelay,
		sleep:  sleepContext,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns every place for the fields, concatenated in page order.
// A failing page aborts the whole search; partial results are discarded.
// ZERO_RESULTS counts as an empty page, so a search with no places returns ErrNoResults.
func (s *PlaceSearcher) Search(ctx context.Context, fields ExtractedFields) ([]entity.PlaceRecord, error) {
	query := fields.Query()

	var (
		places []entity.PlaceRecord
		token  string
	)
	for page := 1; ; page++ {
		resp, err := s.api.TextSearch(ctx, query, token)
		if err != nil {
			return nil, err
		}
		switch resp.Status {
		case clients.StatusOK, clients.StatusZeroResults:
		default:
			return nil, &clients.APIStatusError{Status: resp.Status, Message: resp.ErrorMessage}
		}

		places = append(places, resp.Results...)
		s.logger.Debug("text search page fetched", "query", query, "page", page, "results", len(resp.Results))

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
		if err := s.sleep(ctx, s.delay); err != nil {
			return nil, err
		}
	}

	if len(places) == 0 {
		return nil, ErrNoResults
	}
	return places, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
