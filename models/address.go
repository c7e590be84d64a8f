package models

import "time"

// Validation outcome for an address. A not_found entry is still cached so
// the geocoding API is never asked about the same string twice.
const (
	AddressStatusValidated = "validated"
	AddressStatusNotFound  = "not_found"
)

// ValidatedAddress caches the geocoding result for one raw address string.
// Rows are written once on first encounter and never re-validated.
type ValidatedAddress struct {
	ID               int64     `json:"id" db:"id"`
	RawAddress       string    `json:"raw_address" db:"raw_address"`
	Status           string    `json:"status" db:"status"`
	FormattedAddress *string   `json:"formatted_address" db:"formatted_address"`
	Lat              *float64  `json:"lat" db:"lat"`
	Lng              *float64  `json:"lng" db:"lng"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
