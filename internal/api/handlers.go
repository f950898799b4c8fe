package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"flight_tracker/internal/models"
	"flight_tracker/internal/tracker"

	"github.com/go-chi/chi/v5"
)

const (
	defaultSightingLimit = 20
	maxSightingLimit     = 500
)

type handlers struct {
	deps Dependencies
}

// health handles GET /healthz
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]ServiceStatus)

	if h.deps.DB != nil {
		status := ServiceStatus{Status: "ok", Details: "SQLite connected"}
		if err := h.deps.DB.Ping(); err != nil {
			status = ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["sqlite"] = status
	}

	var sightings *int
	if h.deps.Sightings != nil {
		n, err := h.deps.Sightings.CountSince(time.Now().Add(-24 * time.Hour))
		if err != nil {
			slog.Warn("Failed to count sightings", "error", err)
		} else {
			sightings = &n
		}
	}

	overall := "ok"
	for _, svc := range services {
		if svc.Status != "ok" {
			overall = "down"
			break
		}
	}

	resp := &Health{
		Status:          overall,
		Uptime:          time.Since(h.deps.UpSince).Round(time.Second).String(),
		Tracked:         h.deps.Tracker.Len(),
		SightingsPerDay: sightings,
		Services:        services,
	}

	code := http.StatusOK
	if overall != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondWithSuccess(w, code, resp)
}

// listAircraft handles GET /api/aircraft
func (h *handlers) listAircraft(w http.ResponseWriter, r *http.Request) {
	respondWithSuccess(w, http.StatusOK, aircraftList(h.deps.Tracker.Snapshot()))
}

// getAircraft handles GET /api/aircraft/{id}
func (h *handlers) getAircraft(w http.ResponseWriter, r *http.Request) {
	id := normalizeID(chi.URLParam(r, "id"))

	rec, ok := h.deps.Tracker.Get(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("aircraft %s is not tracked", id))
		return
	}

	resp := toAircraft(rec)
	if h.deps.Registry != nil {
		info, err := h.deps.Registry.Lookup(id)
		if err != nil {
			slog.Warn("Aircraft lookup failed", "icao", id, "error", err)
		}
		resp.Registry = toRegistration(info)
	}
	respondWithSuccess(w, http.StatusOK, &resp)
}

// sightings handles GET /api/aircraft/{id}/sightings?limit=
func (h *handlers) sightings(w http.ResponseWriter, r *http.Request) {
	if h.deps.Sightings == nil {
		respondWithError(w, http.StatusNotFound, "sighting history is disabled")
		return
	}

	id := normalizeID(chi.URLParam(r, "id"))

	limit := defaultSightingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSightingLimit {
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("limit must be an integer between 1 and %d", maxSightingLimit))
			return
		}
		limit = n
	}

	found, err := h.deps.Sightings.ListByICAO(id, limit)
	if err != nil {
		slog.Error("Failed to list sightings", "icao", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to list sightings")
		return
	}

	out := make([]Sighting, 0, len(found))
	for _, s := range found {
		out = append(out, toSighting(s))
	}
	respondWithSuccess(w, http.StatusOK, &out)
}

// callsigns handles GET /api/callsigns
func (h *handlers) callsigns(w http.ResponseWriter, r *http.Request) {
	callsigns := h.deps.Tracker.Callsigns()
	sort.Strings(callsigns)
	respondWithSuccess(w, http.StatusOK, &CallsignList{
		Count:     len(callsigns),
		Callsigns: callsigns,
	})
}

// inRange handles GET /api/aircraft/in-range?lat=&lon=&radius=
// Missing parameters fall back to the configured home and radius.
func (h *handlers) inRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := floatParam(q.Get("lat"), h.deps.Home.Latitude)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lat: "+err.Error())
		return
	}
	lon, err := floatParam(q.Get("lon"), h.deps.Home.Longitude)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lon: "+err.Error())
		return
	}
	radius, err := floatParam(q.Get("radius"), h.deps.Home.RadiusMeters)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid radius: "+err.Error())
		return
	}

	found, err := h.deps.Tracker.InRange(lat, lon, radius)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidRadius) || errors.Is(err, tracker.ErrInvalidCoordinate) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Range query failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "range query failed")
		return
	}

	records := make([]models.AircraftRecord, 0, len(found))
	for _, rec := range found {
		records = append(records, rec)
	}

	respondWithSuccess(w, http.StatusOK, &RangeResult{
		Latitude:     lat,
		Longitude:    lon,
		RadiusMeters: radius,
		AircraftList: *aircraftList(records),
	})
}

// aircraftList converts records to their wire form, sorted by identifier
func aircraftList(records []models.AircraftRecord) *AircraftList {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	out := make([]Aircraft, 0, len(records))
	for _, rec := range records {
		out = append(out, toAircraft(rec))
	}
	return &AircraftList{Count: len(out), Aircraft: out}
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func floatParam(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}
