package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"flight_tracker/internal/models"
)

// Response wraps every JSON body the API returns
type Response[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Aircraft is the wire form of a tracked record
type Aircraft struct {
	ICAO         string        `json:"icao"`
	Callsign     string        `json:"callsign,omitempty"`
	Latitude     *float64      `json:"latitude,omitempty"`
	Longitude    *float64      `json:"longitude,omitempty"`
	Altitude     *int          `json:"altitude,omitempty"`
	GroundSpeed  *float64      `json:"ground_speed,omitempty"`
	Track        *float64      `json:"track,omitempty"`
	VerticalRate *int          `json:"vertical_rate,omitempty"`
	Squawk       string        `json:"squawk,omitempty"`
	OnGround     *bool         `json:"on_ground,omitempty"`
	FirstSeen    time.Time     `json:"first_seen"`
	LastSeen     time.Time     `json:"last_seen"`
	Messages     int           `json:"messages"`
	Registry     *Registration `json:"registry,omitempty"`
}

// Registration is the registry entry attached to an aircraft, when known
type Registration struct {
	Registration string `json:"registration,omitempty"`
	TypeCode     string `json:"type_code,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty"`
	Operator     string `json:"operator,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Country      string `json:"country,omitempty"`
	Built        string `json:"built,omitempty"`
	Description  string `json:"description"`
}

// AircraftList is returned by the list and range endpoints
type AircraftList struct {
	Count    int        `json:"count"`
	Aircraft []Aircraft `json:"aircraft"`
}

// RangeResult adds the query that produced the list
type RangeResult struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	AircraftList
}

// CallsignList is returned by the callsigns endpoint
type CallsignList struct {
	Count     int      `json:"count"`
	Callsigns []string `json:"callsigns"`
}

// Sighting is the wire form of a recorded sighting
type Sighting struct {
	SessionID string    `json:"session_id"`
	ICAO      string    `json:"icao"`
	Callsign  string    `json:"callsign,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Duration  string    `json:"duration"`
	Messages  int       `json:"messages"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Altitude  *int      `json:"altitude,omitempty"`
}

// ServiceStatus is one dependency in the health response
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// Health is the health endpoint body
type Health struct {
	Status          string                   `json:"status"`
	Uptime          string                   `json:"uptime"`
	Tracked         int                      `json:"tracked"`
	SightingsPerDay *int                     `json:"sightings_24h,omitempty"`
	Services        map[string]ServiceStatus `json:"services"`
}

func toAircraft(rec models.AircraftRecord) Aircraft {
	return Aircraft{
		ICAO:         rec.ID,
		Callsign:     rec.Callsign,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Altitude:     rec.Altitude,
		GroundSpeed:  rec.GroundSpeed,
		Track:        rec.Track,
		VerticalRate: rec.VerticalRate,
		Squawk:       rec.Squawk,
		OnGround:     rec.OnGround,
		FirstSeen:    rec.FirstSeen,
		LastSeen:     rec.LastSeen,
		Messages:     rec.Messages,
	}
}

func toRegistration(info *models.AircraftInfo) *Registration {
	if info == nil {
		return nil
	}
	return &Registration{
		Registration: info.Registration,
		TypeCode:     info.TypeCode,
		Manufacturer: info.ManufacturerName,
		Model:        info.Model,
		Operator:     info.Operator,
		Owner:        info.Owner,
		Country:      info.Country,
		Built:        info.Built,
		Description:  info.Describe(),
	}
}

func toSighting(s *models.Sighting) Sighting {
	return Sighting{
		SessionID: s.SessionID,
		ICAO:      s.ICAO,
		Callsign:  s.Callsign,
		FirstSeen: s.FirstSeen,
		LastSeen:  s.LastSeen,
		Duration:  s.Duration().String(),
		Messages:  s.Messages,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Altitude:  s.Altitude,
	}
}

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := Response[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	writeJSON(w, statusCode, resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := Response[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	writeJSON(w, statusCode, resp)
}

// writeJSON encodes before writing the header so an unencodable body turns
// into a 500 instead of an empty 200
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}
