package models

import "time"

// AircraftRecord is the merged picture of one aircraft, keyed by its
// transponder hex identifier. Optional numeric fields are pointers: nil means
// the value has never been observed, a non-nil zero is a real reading.
// Callsign and Squawk use "" for absent.
type AircraftRecord struct {
	ID           string    // 6 hex digit ICAO address, upper case
	Callsign     string    // Trimmed flight number / tail
	Latitude     *float64  // Decimal degrees
	Longitude    *float64  // Decimal degrees
	Altitude     *int      // Feet
	GroundSpeed  *float64  // Knots
	Track        *float64  // Degrees true
	VerticalRate *int      // Feet per minute
	Squawk       string    // Mode A code
	OnGround     *bool     // Ground flag from the feed
	FirstSeen    time.Time // Generation time of the report that created the record
	LastSeen     time.Time // Generation time of the newest report merged
	Messages     int       // Reports that changed the record
}

// NewAircraftRecord seeds a record from the first report for an identifier
func NewAircraftRecord(r Report) *AircraftRecord {
	rec := &AircraftRecord{
		ID:        r.ID,
		FirstSeen: r.Generated,
		LastSeen:  r.Generated,
		Messages:  1,
	}
	rec.Merge(r)
	return rec
}

// HasPosition reports whether both latitude and longitude are known
func (a *AircraftRecord) HasPosition() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Merge applies every field present in r on top of the record and reports
// whether any value changed. Fields absent in r are left untouched. Position
// is only taken when r carries both halves. LastSeen and Messages are left to
// the caller, which owns the ordering policy.
func (a *AircraftRecord) Merge(r Report) bool {
	changed := setString(&a.Callsign, r.Callsign)
	if r.HasPosition() {
		lat := setPtr(&a.Latitude, r.Latitude)
		lon := setPtr(&a.Longitude, r.Longitude)
		changed = lat || lon || changed
	}
	changed = setPtr(&a.Altitude, r.Altitude) || changed
	changed = setPtr(&a.GroundSpeed, r.GroundSpeed) || changed
	changed = setPtr(&a.Track, r.Track) || changed
	changed = setPtr(&a.VerticalRate, r.VerticalRate) || changed
	changed = setString(&a.Squawk, r.Squawk) || changed
	changed = setPtr(&a.OnGround, r.OnGround) || changed
	return changed
}

// FillAbsent copies only the fields of r that the record has not observed yet
// and reports whether anything changed. Used for reports that arrive older
// than LastSeen; such a report may also move FirstSeen earlier.
func (a *AircraftRecord) FillAbsent(r Report) bool {
	var changed bool
	if a.Callsign == "" {
		changed = setString(&a.Callsign, r.Callsign) || changed
	}
	if !a.HasPosition() && r.HasPosition() {
		a.Latitude = clonePtr(r.Latitude)
		a.Longitude = clonePtr(r.Longitude)
		changed = true
	}
	if a.Altitude == nil {
		changed = setPtr(&a.Altitude, r.Altitude) || changed
	}
	if a.GroundSpeed == nil {
		changed = setPtr(&a.GroundSpeed, r.GroundSpeed) || changed
	}
	if a.Track == nil {
		changed = setPtr(&a.Track, r.Track) || changed
	}
	if a.VerticalRate == nil {
		changed = setPtr(&a.VerticalRate, r.VerticalRate) || changed
	}
	if a.Squawk == "" {
		changed = setString(&a.Squawk, r.Squawk) || changed
	}
	if a.OnGround == nil {
		changed = setPtr(&a.OnGround, r.OnGround) || changed
	}
	if r.Generated.Before(a.FirstSeen) {
		a.FirstSeen = r.Generated
		changed = true
	}
	return changed
}

// Clone returns a deep copy that shares no pointers with the receiver
func (a *AircraftRecord) Clone() AircraftRecord {
	cpy := *a
	cpy.Latitude = clonePtr(a.Latitude)
	cpy.Longitude = clonePtr(a.Longitude)
	cpy.Altitude = clonePtr(a.Altitude)
	cpy.GroundSpeed = clonePtr(a.GroundSpeed)
	cpy.Track = clonePtr(a.Track)
	cpy.VerticalRate = clonePtr(a.VerticalRate)
	cpy.OnGround = clonePtr(a.OnGround)
	return cpy
}

// setPtr stores a copy of src in *dst when src is present and differs
func setPtr[T comparable](dst **T, src *T) bool {
	if src == nil || (*dst != nil && **dst == *src) {
		return false
	}
	*dst = clonePtr(src)
	return true
}

func setString(dst *string, src string) bool {
	if src == "" || *dst == src {
		return false
	}
	*dst = src
	return true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
