package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/geosearch/internal/dto"
	"github.com/octobees/geosearch/internal/entity"
)

// PlacesRepository describes persistence operations for the place catalogue.
type PlacesRepository interface {
	UpsertPlaces(ctx context.Context, places []entity.CatalogPlace) (UpsertResult, error)
	List(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error)
}

// UpsertResult summarises the number of rows inserted or updated.
type UpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PGXPlacesRepository implements PlacesRepository using pgx.
type PGXPlacesRepository struct {
	pool pgxPool
}

// NewPGXPlacesRepository wires a pgx backed repository.
func NewPGXPlacesRepository(pool *pgxpool.Pool) *PGXPlacesRepository {
	return &PGXPlacesRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const upsertPlaceSQL = `
        INSERT INTO places (
            place_id,
            search_run_id,
            name,
            address,
            phone,
            phone_e164,
            website,
            website_host,
            rating,
            reviews,
            business_type,
            city,
            country,
            latitude,
            longitude,
            maps_url,
            searched_at,
            updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW())
        ON CONFLICT (place_id) DO UPDATE SET
            search_run_id = COALESCE(EXCLUDED.search_run_id, places.search_run_id),
            name = EXCLUDED.name,
            address = EXCLUDED.address,
            phone = COALESCE(EXCLUDED.phone, places.phone),
            phone_e164 = COALESCE(EXCLUDED.phone_e164, places.phone_e164),
            website = COALESCE(EXCLUDED.website, places.website),
            website_host = COALESCE(EXCLUDED.website_host, places.website_host),
            rating = EXCLUDED.rating,
            reviews = EXCLUDED.reviews,
            business_type = EXCLUDED.business_type,
            city = EXCLUDED.city,
            country = EXCLUDED.country,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            maps_url = EXCLUDED.maps_url,
            searched_at = COALESCE(EXCLUDED.searched_at, places.searched_at),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// UpsertPlaces persists a batch of places keyed by place_id in one transaction.
// Places without a place_id cannot be deduplicated and are skipped.
func (r *PGXPlacesRepository) UpsertPlaces(ctx context.Context, places []entity.CatalogPlace) (UpsertResult, error) {
	var result UpsertResult
	if len(places) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start place upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, place := range places {
		if place.PlaceID == "" {
			continue
		}
		var inserted bool
		err := tx.QueryRow(ctx, upsertPlaceSQL,
			place.PlaceID,
			place.SearchRunID,
			place.Name,
			stringOrNil(place.Address),
			stringOrNil(place.Phone),
			stringOrNil(place.PhoneE164),
			stringOrNil(place.Website),
			stringOrNil(place.WebsiteHost),
			floatOrNil(place.Rating),
			intOrNil(place.Reviews),
			stringOrNil(place.BusinessType),
			stringOrNil(place.City),
			stringOrNil(place.Country),
			floatOrNil(place.Latitude),
			floatOrNil(place.Longitude),
			place.MapsURL,
			place.SearchedAt,
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("upsert place %q: %w", place.PlaceID, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit place upsert tx: %w", err)
	}
	return result, nil
}

// List retrieves places matching the filter, sorted by rating then reviews.
func (r *PGXPlacesRepository) List(ctx context.Context, filter dto.PlaceFilter) ([]entity.CatalogPlace, error) {
	query, args := buildListQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

func buildListQuery(filter dto.PlaceFilter) (string, []any) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`
        SELECT
            id,
            place_id,
            search_run_id,
            name,
            address,
            phone,
            phone_e164,
            website,
            website_host,
            rating,
            reviews,
            business_type,
            city,
            country,
            latitude,
            longitude,
            maps_url,
            searched_at,
            created_at,
            updated_at
        FROM places
    `)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.BusinessType != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(business_type) = LOWER($%d)", idx))
		args = append(args, filter.BusinessType)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(country) = LOWER($%d)", idx))
		args = append(args, filter.Country)
		idx++
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", idx))
		args = append(args, *filter.MinRating)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY rating DESC NULLS LAST, reviews DESC NULLS LAST, name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	return baseQuery.String(), args
}

func scanPlaces(rows pgx.Rows) ([]entity.CatalogPlace, error) {
	var places []entity.CatalogPlace
	for rows.Next() {
		var (
			p            entity.CatalogPlace
			searchRunID  sql.NullString
			address      sql.NullString
			phone        sql.NullString
			phoneE164    sql.NullString
			website      sql.NullString
			websiteHost  sql.NullString
			rating       sql.NullFloat64
			reviews      sql.NullInt64
			businessType sql.NullString
			city         sql.NullString
			country      sql.NullString
			latitude     sql.NullFloat64
			longitude    sql.NullFloat64
			searchedAt   sql.NullTime
		)

		err := rows.Scan(
			&p.ID,
			&p.PlaceID,
			&searchRunID,
			&p.Name,
			&address,
			&phone,
			&phoneE164,
			&website,
			&websiteHost,
			&rating,
			&reviews,
			&businessType,
			&city,
			&country,
			&latitude,
			&longitude,
			&p.MapsURL,
			&searchedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}

		if searchRunID.Valid {
			parsed, err := uuid.Parse(searchRunID.String)
			if err != nil {
				return nil, fmt.Errorf("parse search_run_id: %w", err)
			}
			p.SearchRunID = &parsed
		}
		p.Address = nullStringToPtr(address)
		p.Phone = nullStringToPtr(phone)
		p.PhoneE164 = nullStringToPtr(phoneE164)
		p.Website = nullStringToPtr(website)
		p.WebsiteHost = nullStringToPtr(websiteHost)
		p.BusinessType = nullStringToPtr(businessType)
		p.City = nullStringToPtr(city)
		p.Country = nullStringToPtr(country)
		if rating.Valid {
			val := rating.Float64
			p.Rating = &val
		}
		if reviews.Valid {
			cast := int(reviews.Int64)
			p.Reviews = &cast
		}
		if latitude.Valid {
			val := latitude.Float64
			p.Latitude = &val
		}
		if longitude.Valid {
			val := longitude.Float64
			p.Longitude = &val
		}
		if searchedAt.Valid {
			ts := searchedAt.Time
			p.SearchedAt = &ts
		}

		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate places: %w", err)
	}
	return places, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

func floatOrNil(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func intOrNil(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
