package service

import (
	"fmt"
	"strings"
)

// ExtractedFields are the three search parameters read from the model's answer.
type ExtractedFields struct {
	BusinessType string `json:"business_type"`
	City         string `json:"city"`
	Country      string `json:"country"`
}

// Missing lists the empty fields in display order.
func (f ExtractedFields) Missing() []string {
	var missing []string
	if f.BusinessType == "" {
		missing = append(missing, "business type")
	}
	if f.City == "" {
		missing = append(missing, "city")
	}
	if f.Country == "" {
		missing = append(missing, "country")
	}
	return missing
}

// Complete reports whether every field is set.
func (f ExtractedFields) Complete() bool {
	return len(f.Missing()) == 0
}

// Query builds the Text Search query "<business type> in <city>, <country>".
func (f ExtractedFields) Query() string {
	return fmt.Sprintf("%s in %s, %s", f.BusinessType, f.City, f.Country)
}

// ParseFields reads "label: value" lines. Labels are matched by case-insensitive
// substring, checked business type first, then city, then country. Later lines
// overwrite earlier ones and lines without a colon are ignored.
func ParseFields(text string) ExtractedFields {
	var fields ExtractedFields
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch {
		case strings.Contains(key, "business type"):
			fields.BusinessType = value
		case strings.Contains(key, "city"):
			fields.City = value
		case strings.Contains(key, "country"):
			fields.Country = value
		}
	}
	return fields
}
