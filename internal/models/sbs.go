package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"flight_tracker/internal/geo"
)

// ErrUnsupportedRecord is returned for well-formed SBS lines that carry no
// aircraft data (SEL, ID, AIR, STA, CLK records)
var ErrUnsupportedRecord = errors.New("unsupported sbs record type")

// SBSMessage represents one MSG line of the SBS-1 BaseStation feed.
// Optional columns are nil or "" when the feed left them empty.
type SBSMessage struct {
	TransmissionType int
	HexIdent         string // as sent, not yet normalized
	Generated        time.Time
	Logged           time.Time
	Callsign         string // raw, fixed width with padding
	Altitude         *int
	GroundSpeed      *float64
	Track            *float64
	Latitude         *float64
	Longitude        *float64
	VerticalRate     *int
	Squawk           string
	Alert            *bool
	Emergency        *bool
	SPI              *bool
	OnGround         *bool
}

// ParseSBSMessage parses an SBS line using the local time zone for the
// generated/logged columns, which is how dump1090 writes them
func ParseSBSMessage(line string) (*SBSMessage, error) {
	return ParseSBSMessageIn(line, time.Local)
}

// ParseSBSMessageIn parses an SBS line, interpreting timestamps in loc
// Format: MSG,tt,sid,aid,hex,fid,dgen,tgen,dlog,tlog,callsign,alt,gs,trk,lat,lon,vr,squawk,alert,emerg,spi,gnd
func ParseSBSMessageIn(line string, loc *time.Location) (*SBSMessage, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, fmt.Errorf("empty sbs line")
	}

	fields := strings.Split(line, ",")
	if fields[sbsFieldRecordType] != SBSRecordMSG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRecord, fields[sbsFieldRecordType])
	}
	if len(fields) < SBSFieldCount {
		return nil, fmt.Errorf("sbs message too short: %d fields", len(fields))
	}

	tt, err := strconv.Atoi(strings.TrimSpace(fields[sbsFieldTransmissionType]))
	if err != nil {
		return nil, fmt.Errorf("invalid transmission type %q: %w", fields[sbsFieldTransmissionType], err)
	}

	msg := &SBSMessage{
		TransmissionType: tt,
		HexIdent:         strings.TrimSpace(fields[sbsFieldHexIdent]),
		Callsign:         fields[sbsFieldCallsign],
		Squawk:           strings.TrimSpace(fields[sbsFieldSquawk]),
	}

	if msg.Generated, err = parseSBSTime(fields[sbsFieldDateGenerated], fields[sbsFieldTimeGenerated], loc); err != nil {
		return nil, fmt.Errorf("invalid generated time: %w", err)
	}
	if msg.Logged, err = parseSBSTime(fields[sbsFieldDateLogged], fields[sbsFieldTimeLogged], loc); err != nil {
		return nil, fmt.Errorf("invalid logged time: %w", err)
	}

	if msg.Altitude, err = parseOptionalInt(fields[sbsFieldAltitude]); err != nil {
		return nil, fmt.Errorf("invalid altitude: %w", err)
	}
	if msg.GroundSpeed, err = parseOptionalFloat(fields[sbsFieldGroundSpeed]); err != nil {
		return nil, fmt.Errorf("invalid ground speed: %w", err)
	}
	if msg.Track, err = parseOptionalFloat(fields[sbsFieldTrack]); err != nil {
		return nil, fmt.Errorf("invalid track: %w", err)
	}
	if msg.Latitude, err = parseOptionalFloat(fields[sbsFieldLatitude]); err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}
	if msg.Longitude, err = parseOptionalFloat(fields[sbsFieldLongitude]); err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}
	if msg.VerticalRate, err = parseOptionalInt(fields[sbsFieldVerticalRate]); err != nil {
		return nil, fmt.Errorf("invalid vertical rate: %w", err)
	}

	msg.Alert = parseFlag(fields[sbsFieldAlert])
	msg.Emergency = parseFlag(fields[sbsFieldEmergency])
	msg.SPI = parseFlag(fields[sbsFieldSPI])
	msg.OnGround = parseFlag(fields[sbsFieldOnGround])

	return msg, nil
}

// Report normalizes the message into a tracker report. Messages without a hex
// identifier or generation timestamp are rejected; fixed-width callsign
// padding is trimmed; position is kept only when both halves are valid.
func (m *SBSMessage) Report() (Report, error) {
	id := strings.ToUpper(strings.TrimSpace(m.HexIdent))
	if id == "" {
		return Report{}, ErrMissingIdentifier
	}
	if m.Generated.IsZero() {
		return Report{}, ErrMissingTimestamp
	}

	r := Report{
		ID:           id,
		Generated:    m.Generated,
		Callsign:     strings.TrimSpace(m.Callsign),
		Altitude:     clonePtr(m.Altitude),
		GroundSpeed:  clonePtr(m.GroundSpeed),
		Track:        clonePtr(m.Track),
		VerticalRate: clonePtr(m.VerticalRate),
		Squawk:       m.Squawk,
		OnGround:     clonePtr(m.OnGround),
	}
	if m.Latitude != nil && m.Longitude != nil && geo.ValidCoordinate(*m.Latitude, *m.Longitude) {
		r.Latitude = clonePtr(m.Latitude)
		r.Longitude = clonePtr(m.Longitude)
	}
	return r, nil
}

// Kind returns the transmission type label, or "unknown"
func (m *SBSMessage) Kind() string {
	name, err := SBSTransmissionName(m.TransmissionType)
	if err != nil {
		return "unknown"
	}
	return name
}

// parseSBSTime returns the zero time when either column is empty
func parseSBSTime(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(SBSDateLayout+" "+SBSTimeLayout, date+" "+clock, loc)
}

func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("non-finite value %q", s)
	}
	return &v, nil
}

// parseOptionalInt accepts decimal values too; some decoders write "-64.0"
func parseOptionalInt(s string) (*int, error) {
	f, err := parseOptionalFloat(s)
	if err != nil || f == nil {
		return nil, err
	}
	v := int(math.Round(*f))
	return &v, nil
}

// parseFlag maps the feed's "-1"/"1" to true and "0" to false
func parseFlag(s string) *bool {
	switch strings.TrimSpace(s) {
	case "-1", "1":
		v := true
		return &v
	case "0":
		v := false
		return &v
	default:
		return nil
	}
}
