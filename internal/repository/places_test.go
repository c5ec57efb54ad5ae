package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
)

type stubPlaceRows struct {
	called bool
}

func (s *stubPlaceRows) Close()                                       {}
func (s *stubPlaceRows) Err() error                                   { return nil }
func (s *stubPlaceRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (s *stubPlaceRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (s *stubPlaceRows) Next() bool {
	if s.called {
		return false
	}
	s.called = true
	return true
}

func (s *stubPlaceRows) Scan(dest ...any) error {
	if !s.called {
		return errors.New("scan called before next")
	}
	created := time.Now()
	runID := uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")

	*dest[0].(*uuid.UUID) = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	*dest[1].(*string) = "place-123"
	*dest[2].(*sql.NullString) = sql.NullString{String: runID.String(), Valid: true}
	*dest[3].(*string) = "Cool Air"
	*dest[4].(*sql.NullString) = sql.NullString{String: "FC Road", Valid: true}
	*dest[5].(*sql.NullString) = sql.NullString{String: "020 1234 5678", Valid: true}
	*dest[6].(*sql.NullString) = sql.NullString{String: "+912012345678", Valid: true}
	*dest[7].(*sql.NullString) = sql.NullString{}
	*dest[8].(*sql.NullString) = sql.NullString{}
	*dest[9].(*sql.NullFloat64) = sql.NullFloat64{Float64: 4.5, Valid: true}
	*dest[10].(*sql.NullInt64) = sql.NullInt64{Int64: 100, Valid: true}
	*dest[11].(*sql.NullString) = sql.NullString{String: "AC shop", Valid: true}
	*dest[12].(*sql.NullString) = sql.NullString{String: "Pune", Valid: true}
	*dest[13].(*sql.NullString) = sql.NullString{String: "India", Valid: true}
	*dest[14].(*sql.NullFloat64) = sql.NullFloat64{Float64: 18.52, Valid: true}
	*dest[15].(*sql.NullFloat64) = sql.NullFloat64{Float64: 73.85, Valid: true}
	*dest[16].(*string) = "https://www.google.com/maps/place/?q=place_id:place-123"
	*dest[17].(*sql.NullTime) = sql.NullTime{Time: created, Valid: true}
	*dest[18].(*time.Time) = created
	*dest[19].(*time.Time) = created
	return nil
}

func (s *stubPlaceRows) Values() ([]any, error) { return nil, nil }
func (s *stubPlaceRows) RawValues() [][]byte    { return nil }
func (s *stubPlaceRows) Conn() *pgx.Conn        { return nil }

type stubPool struct {
	query    string
	args     []any
	beginErr error
}

func (p *stubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *stubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.query = sql
	p.args = args
	return &stubPlaceRows{}, nil
}

func (p *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return nil, p.beginErr
}

func TestPGXPlacesRepository_UpsertEmpty(t *testing.T) {
	repo := &PGXPlacesRepository{}
	res, err := repo.UpsertPlaces(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 {
		t.Fatalf("expected zero summary, got %+v", res)
	}
}

func TestPGXPlacesRepository_UpsertBeginError(t *testing.T) {
	repo := &PGXPlacesRepository{pool: &stubPool{beginErr: errors.New("db down")}}
	_, err := repo.UpsertPlaces(context.Background(), []entity.CatalogPlace{{PlaceID: "p1", Name: "A"}})
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestPGXPlacesRepository_List(t *testing.T) {
	pool := &stubPool{}
	repo := &PGXPlacesRepository{pool: pool}
	minRating := 4.0

	places, err := repo.List(context.Background(), dto.PlaceFilter{City: "Pune", MinRating: &minRating, Page: 2, PerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].PlaceID != "place-123" {
		t.Fatalf("unexpected places: %+v", places)
	}
	if !strings.Contains(pool.query, "LOWER(city) = LOWER($1)") || !strings.Contains(pool.query, "rating >= $2") {
		t.Fatalf("unexpected query: %s", pool.query)
	}
	if len(pool.args) != 4 || pool.args[2] != 10 || pool.args[3] != 10 {
		t.Fatalf("unexpected args: %v", pool.args)
	}
}

func TestBuildListQuery_Defaults(t *testing.T) {
	query, args := buildListQuery(dto.PlaceFilter{Q: "cool", PerPage: 500})
	if !strings.Contains(query, "(name ILIKE $1 OR address ILIKE $2)") {
		t.Fatalf("expected text filter, got %s", query)
	}
	if !strings.Contains(query, "LIMIT $3 OFFSET $4") {
		t.Fatalf("expected pagination placeholders, got %s", query)
	}
	if args[0] != "%cool%" || args[2] != 100 || args[3] != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestScanPlaces(t *testing.T) {
	places, err := scanPlaces(&stubPlaceRows{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	p := places[0]
	if p.Name != "Cool Air" || p.PhoneE164 == nil || *p.PhoneE164 != "+912012345678" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if p.SearchRunID == nil || p.SearchRunID.String() != "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb" {
		t.Fatalf("expected search_run_id set, got %+v", p.SearchRunID)
	}
	if p.Website != nil || p.WebsiteHost != nil {
		t.Fatalf("expected null website to stay nil")
	}
	if p.Reviews == nil || *p.Reviews != 100 || p.Latitude == nil || *p.Latitude != 18.52 {
		t.Fatalf("unexpected numeric fields: %+v", p)
	}
	if p.SearchedAt == nil {
		t.Fatalf("expected searched_at set")
	}
}

func TestNilHelpers(t *testing.T) {
	empty := ""
	if stringOrNil(&empty) != nil || stringOrNil(nil) != nil {
		t.Fatalf("expected empty strings to map to nil")
	}
	v := 3
	if intOrNil(&v) != 3 || floatOrNil(nil) != nil {
		t.Fatalf("unexpected helper results")
	}
}
