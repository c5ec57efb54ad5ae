package entity

// PlaceRecord is a single result of the Places Text Search endpoint.
type PlaceRecord struct {
	PlaceID              string    `json:"place_id"`
	Name                 string    `json:"name"`
	FormattedAddress     string    `json:"formatted_address"`
	Geometry             *Geometry `json:"geometry,omitempty"`
	Rating               *float64  `json:"rating,omitempty"`
	UserRatingsTotal     *int      `json:"user_ratings_total,omitempty"`
	FormattedPhoneNumber string    `json:"formatted_phone_number,omitempty"`
	Website              string    `json:"website,omitempty"`
}

// Geometry wraps the place location as returned by Google.
type Geometry struct {
	Location *LatLng `json:"location,omitempty"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Latitude returns the latitude when the record carries a location.
func (p PlaceRecord) Latitude() *float64 {
	if p.Geometry == nil || p.Geometry.Location == nil {
		return nil
	}
	lat := p.Geometry.Location.Lat
	return &lat
}

// Longitude returns the longitude when the record carries a location.
func (p PlaceRecord) Longitude() *float64 {
	if p.Geometry == nil || p.Geometry.Location == nil {
		return nil
	}
	lng := p.Geometry.Location.Lng
	return &lng
}

// Enrichment holds the contact fields fetched from Place Details. Empty means absent.
type Enrichment struct {
	PhoneNumber string `json:"formatted_phone_number,omitempty"`
	Website     string `json:"website,omitempty"`
}

// EnrichedPlace is a place record completed with its contact details and maps link.
type EnrichedPlace struct {
	Place       PlaceRecord
	PhoneNumber string
	Website     string
	MapsURL     string
}
