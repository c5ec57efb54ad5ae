package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogPlace is a place persisted by a completed search.
type CatalogPlace struct {
	ID           uuid.UUID  `json:"id"`
	PlaceID      string     `json:"place_id"`
	SearchRunID  *uuid.UUID `json:"search_run_id,omitempty"`
	Name         string     `json:"name"`
	Address      *string    `json:"address,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	PhoneE164    *string    `json:"phone_e164,omitempty"`
	Website      *string    `json:"website,omitempty"`
	WebsiteHost  *string    `json:"website_host,omitempty"`
	Rating       *float64   `json:"rating,omitempty"`
	Reviews      *int       `json:"reviews,omitempty"`
	BusinessType *string    `json:"business_type,omitempty"`
	City         *string    `json:"city,omitempty"`
	Country      *string    `json:"country,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	MapsURL      string     `json:"maps_url"`
	SearchedAt   *time.Time `json:"searched_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
