package models

import "time"

// Sighting summarizes one continuous period an aircraft was tracked, from the
// report that created its record until the sweep that evicted it.
type Sighting struct {
	SessionID string
	ICAO      string
	Callsign  string
	FirstSeen time.Time
	LastSeen  time.Time
	Messages  int
	Latitude  *float64 // last known position, if any
	Longitude *float64
	Altitude  *int
}

// NewSighting builds a sighting summary from an evicted record
func NewSighting(sessionID string, rec AircraftRecord) *Sighting {
	return &Sighting{
		SessionID: sessionID,
		ICAO:      rec.ID,
		Callsign:  rec.Callsign,
		FirstSeen: rec.FirstSeen,
		LastSeen:  rec.LastSeen,
		Messages:  rec.Messages,
		Latitude:  clonePtr(rec.Latitude),
		Longitude: clonePtr(rec.Longitude),
		Altitude:  clonePtr(rec.Altitude),
	}
}

// Duration is how long the aircraft was tracked
func (s *Sighting) Duration() time.Duration {
	return s.LastSeen.Sub(s.FirstSeen)
}
