package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/metrics"
)

const (
	defaultDetailWorkers = 4
	mapsPlaceURL         = "https://www.google.com/maps/place/?q=place_id:"
)

// DetailsFetcher looks up the contact details of a place.
type DetailsFetcher interface {
	Details(ctx context.Context, placeID string) (entity.Enrichment, error)
}

// DetailEnricher adds phone, website and maps link to each place.
type DetailEnricher struct {
	api     DetailsFetcher
	workers int
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// EnricherOption customises a DetailEnricher.
type EnricherOption func(*DetailEnricher)

// WithWorkers bounds the number of concurrent details lookups.
func WithWorkers(n int) EnricherOption {
	return func(e *DetailEnricher) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRateLimit allows at most requests lookups per interval.
func WithRateLimit(requests int, interval time.Duration) EnricherOption {
	return func(e *DetailEnricher) {
		if requests > 0 && interval > 0 {
			e.limiter = rate.NewLimiter(rate.Every(interval/time.Duration(requests)), requests)
		}
	}
}

// WithEnricherMetrics records absorbed lookup failures.
func WithEnricherMetrics(m *metrics.Metrics) EnricherOption {
	return func(e *DetailEnricher) {
		e.metrics = m
	}
}

// WithEnricherLogger sets the enricher logger.
func WithEnricherLogger(logger *slog.Logger) EnricherOption {
	return func(e *DetailEnricher) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewDetailEnricher creates an enricher with four workers and no rate limit by default.
func NewDetailEnricher(api DetailsFetcher, opts ...EnricherOption) *DetailEnricher {
	e := &DetailEnricher{api: api, workers: defaultDetailWorkers, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one enriched place per input, in input order.
// A failed lookup leaves that place's contact fields empty; only ctx cancellation is an error.
func (e *DetailEnricher) Enrich(ctx context.Context, places []entity.PlaceRecord) ([]entity.EnrichedPlace, error) {
	enriched := make([]entity.EnrichedPlace, len(places))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, place := range places {
		g.Go(func() error {
			enriched[i] = e.enrichOne(gctx, place)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return enriched, nil
}

func (e *DetailEnricher) enrichOne(ctx context.Context, place entity.PlaceRecord) entity.EnrichedPlace {
	out := entity.EnrichedPlace{
		Place:       place,
		PhoneNumber: place.FormattedPhoneNumber,
		Website:     place.Website,
		MapsURL:     MapsURL(place.PlaceID),
	}
	if place.PlaceID == "" || (out.PhoneNumber != "" && out.Website != "") {
		return out
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return out
		}
	}
	details, err := e.api.Details(ctx, place.PlaceID)
	if err != nil {
		e.metrics.IncDetailFailure()
		e.logger.Warn("place details lookup failed", "place_id", place.PlaceID, "error", err)
		return out
	}
	if out.PhoneNumber == "" {
		out.PhoneNumber = details.PhoneNumber
	}
	if out.Website == "" {
		out.Website = details.Website
	}
	return out
}

// MapsURL links to the Google Maps page of a place, or returns "" without an id.
func MapsURL(placeID string) string {
	if placeID == "" {
		return ""
	}
	return mapsPlaceURL + placeID
}
