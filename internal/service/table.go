package service

import "github.com/octobees/geosearch/internal/entity"

// BuildTable projects enriched places onto the fixed result columns, one row per place.
// The URL cell stays empty for a place without an identifier.
func BuildTable(places []entity.EnrichedPlace) entity.ResultTable {
	rows := make([]entity.Row, 0, len(places))
	for _, p := range places {
		url := p.MapsURL
		if url == "" {
			url = MapsURL(p.Place.PlaceID)
		}
		rows = append(rows, entity.Row{
			Name:             p.Place.Name,
			Address:          p.Place.FormattedAddress,
			Latitude:         p.Place.Latitude(),
			Longitude:        p.Place.Longitude(),
			Rating:           p.Place.Rating,
			UserRatingsTotal: p.Place.UserRatingsTotal,
			PhoneNumber:      orNotAvailable(p.PhoneNumber),
			Website:          orNotAvailable(p.Website),
			URL:              url,
		})
	}
	return entity.ResultTable{Rows: rows}
}

func orNotAvailable(value string) string {
	if value == "" {
		return entity.NotAvailable
	}
	return value
}
