package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/repository"
)

// SearchRun identifies one completed search for cataloguing.
type SearchRun struct {
	ID     uuid.UUID
	Fields ExtractedFields
	At     time.Time
}

// CatalogService exposes read/write operations for the place catalogue.
type CatalogService struct {
	repo       repository.PlacesRepository
	normalizer *ContactNormalizer
}

// NewCatalogService creates a catalogue service that normalizes phones in region.
func NewCatalogService(repo repository.PlacesRepository, region string) *CatalogService {
	return &CatalogService{repo: repo, normalizer: NewContactNormalizer(region)}
}

// ListPlaces returns catalogued places respecting pagination defaults.
func (s *CatalogService) ListPlaces(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// SaveSearch upserts the places of a completed search.
func (s *CatalogService) SaveSearch(ctx context.Context, run SearchRun, places []entity.EnrichedPlace) (repository.UpsertResult, error) {
	records := make([]entity.CatalogPlace, 0, len(places))
	for _, p := range places {
		if p.Place.PlaceID == "" {
			continue
		}
		records = append(records, s.toCatalogPlace(run, p))
	}
	return s.repo.UpsertPlaces(ctx, records)
}

func (s *CatalogService) toCatalogPlace(run SearchRun, p entity.EnrichedPlace) entity.CatalogPlace {
	runID := run.ID
	searchedAt := run.At
	return entity.CatalogPlace{
		PlaceID:      p.Place.PlaceID,
		SearchRunID:  &runID,
		Name:         p.Place.Name,
		Address:      optional(p.Place.FormattedAddress),
		Phone:        optional(p.PhoneNumber),
		PhoneE164:    optional(s.normalizer.Phone(p.PhoneNumber)),
		Website:      optional(p.Website),
		WebsiteHost:  optional(s.normalizer.WebsiteHost(p.Website)),
		Rating:       p.Place.Rating,
		Reviews:      p.Place.UserRatingsTotal,
		BusinessType: optional(run.Fields.BusinessType),
		City:         optional(run.Fields.City),
		Country:      optional(run.Fields.Country),
		Latitude:     p.Place.Latitude(),
		Longitude:    p.Place.Longitude(),
		MapsURL:      p.MapsURL,
		SearchedAt:   &searchedAt,
	}
}

func optional(value string) *string {
	if value == "" || value == entity.NotAvailable {
		return nil
	}
	return &value
}
