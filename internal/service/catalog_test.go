package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
	"github.com/octobees/geosearch/internal/repository"
)

type mockPlacesRepository struct {
	list   func(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error)
	upsert func(ctx context.Context, places []entity.CatalogPlace) (repository.UpsertResult, error)
}

func (m *mockPlacesRepository) List(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error) {
	if m.list != nil {
		return m.list(ctx, filter)
	}
	return nil, errors.New("list not implemented")
}

func (m *mockPlacesRepository) UpsertPlaces(ctx context.Context, places []entity.CatalogPlace) (repository.UpsertResult, error) {
	if m.upsert != nil {
		return m.upsert(ctx, places)
	}
	return repository.UpsertResult{}, errors.New("upsert not implemented")
}

func TestCatalogService_ListPlaces_AppliesDefaults(t *testing.T) {
	received := dto.PlaceFilter{}
	repo := &mockPlacesRepository{
		list: func(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error) {
			received = filter
			return []entity.CatalogPlace{{Name: "Cool Air"}}, nil
		},
	}

	places, err := NewCatalogService(repo, "IN").ListPlaces(context.Background(), dto.PlaceFilter{Page: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	if received.Page != 1 || received.PerPage != 20 {
		t.Fatalf("expected page 1 and per_page 20, got %d %d", received.Page, received.PerPage)
	}
}

func TestCatalogService_ListPlaces_CapsPerPage(t *testing.T) {
	repo := &mockPlacesRepository{
		list: func(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error) {
			if filter.PerPage != 100 {
				t.Fatalf("expected per_page capped at 100, got %d", filter.PerPage)
			}
			return nil, nil
		},
	}
	if _, err := NewCatalogService(repo, "").ListPlaces(context.Background(), dto.PlaceFilter{PerPage: 1000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCatalogService_SaveSearch(t *testing.T) {
	var saved []entity.CatalogPlace
	repo := &mockPlacesRepository{
		upsert: func(ctx context.Context, places []entity.CatalogPlace) (repository.UpsertResult, error) {
			saved = places
			return repository.UpsertResult{Inserted: len(places), Total: len(places)}, nil
		},
	}
	run := SearchRun{
		ID:     uuid.New(),
		Fields: ExtractedFields{BusinessType: "AC shop", City: "Mountain View", Country: "USA"},
		At:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	places := []entity.EnrichedPlace{
		{
			Place:       entity.PlaceRecord{PlaceID: "p1", Name: "Cool Air", FormattedAddress: "1600 Amphitheatre"},
			PhoneNumber: "(650) 253-0000",
			Website:     "https://www.cool.example/",
			MapsURL:     MapsURL("p1"),
		},
		{Place: entity.PlaceRecord{Name: "No id"}},
		{Place: entity.PlaceRecord{PlaceID: "p2", Name: "Bare"}, PhoneNumber: "N/A"},
	}

	res, err := NewCatalogService(repo, "US").SaveSearch(context.Background(), run, places)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(saved) != 2 {
		t.Fatalf("expected places without id to be skipped, got %d", len(saved))
	}
	first := saved[0]
	if first.PhoneE164 == nil || *first.PhoneE164 != "+16502530000" {
		t.Fatalf("expected normalized phone, got %v", first.PhoneE164)
	}
	if first.WebsiteHost == nil || *first.WebsiteHost != "cool.example" {
		t.Fatalf("expected website host, got %v", first.WebsiteHost)
	}
	if first.City == nil || *first.City != "Mountain View" || *first.SearchRunID != run.ID {
		t.Fatalf("expected run metadata, got %+v", first)
	}
	if saved[1].Phone != nil || saved[1].PhoneE164 != nil {
		t.Fatalf("expected N/A phone to be stored as null")
	}
}
