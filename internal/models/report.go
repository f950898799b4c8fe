package models

import (
	"errors"
	"time"
)

var (
	// ErrMissingIdentifier is returned for a report without a transponder hex identifier
	ErrMissingIdentifier = errors.New("report has no transponder identifier")
	// ErrMissingTimestamp is returned for a report without a generation timestamp
	ErrMissingTimestamp = errors.New("report has no generation timestamp")
)

// Report is one normalized observation of an aircraft. ID and Generated are
// mandatory; every other field is optional and follows the same presence
// rules as AircraftRecord.
type Report struct {
	ID           string
	Generated    time.Time
	Callsign     string
	Latitude     *float64
	Longitude    *float64
	Altitude     *int
	GroundSpeed  *float64
	Track        *float64
	VerticalRate *int
	Squawk       string
	OnGround     *bool
}

// Validate checks the mandatory fields
func (r Report) Validate() error {
	if r.ID == "" {
		return ErrMissingIdentifier
	}
	if r.Generated.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// HasPosition reports whether the report carries both latitude and longitude
func (r Report) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Ptr returns a pointer to v, for building reports with optional fields
func Ptr[T any](v T) *T {
	return &v
}
