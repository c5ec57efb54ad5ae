package dto

// PlaceFilter contains query parameters for the catalogue listing endpoint.
type PlaceFilter struct {
	Q            string
	BusinessType string
	City         string
	Country      string
	MinRating    *float64
	Page         int
	PerPage      int
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse summarises a completed search.
type SearchResponse struct {
	Query        string            `json:"query"`
	BusinessType string            `json:"business_type"`
	City         string            `json:"city"`
	Country      string            `json:"country"`
	RowCount     int               `json:"row_count"`
	Columns      []string          `json:"columns"`
	Rows         []map[string]any  `json:"rows"`
	Downloads    map[string]string `json:"downloads"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Phase  string          `json:"phase"`
	Query  string          `json:"query,omitempty"`
	Error  string          `json:"error,omitempty"`
	Result *SearchResponse `json:"result,omitempty"`
}
