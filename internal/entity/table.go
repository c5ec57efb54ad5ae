package entity

import "strconv"

// NotAvailable marks an enrichment field the details lookup could not provide.
const NotAvailable = "N/A"

// Columns is the fixed column order of every result table and export.
var Columns = []string{
	"Name",
	"Address",
	"Latitude",
	"Longitude",
	"Rating",
	"User Ratings Total",
	"Phone Number",
	"Website",
	"URL",
}

// Row is one place projected onto Columns. Nil numeric cells render as the empty string.
type Row struct {
	Name             string
	Address          string
	Latitude         *float64
	Longitude        *float64
	Rating           *float64
	UserRatingsTotal *int
	PhoneNumber      string
	Website          string
	URL              string
}

// Values returns the row cells in column order, keeping numbers numeric.
func (r Row) Values() []any {
	return []any{
		r.Name,
		r.Address,
		floatCell(r.Latitude),
		floatCell(r.Longitude),
		floatCell(r.Rating),
		intCell(r.UserRatingsTotal),
		r.PhoneNumber,
		r.Website,
		r.URL,
	}
}

// Strings returns the row cells in column order formatted as text.
func (r Row) Strings() []string {
	return []string{
		r.Name,
		r.Address,
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		formatFloat(r.Rating),
		formatInt(r.UserRatingsTotal),
		r.PhoneNumber,
		r.Website,
		r.URL,
	}
}

// ResultTable is the ordered set of rows produced by a search.
type ResultTable struct {
	Rows []Row
}

// Len reports the number of rows.
func (t ResultTable) Len() int {
	return len(t.Rows)
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
