package models

import "strings"

// AircraftInfo is static airframe information from the aircraft registry.
// Fields correspond to columns in the aircraft-database CSV dumps.
type AircraftInfo struct {
	ICAO24           string // Primary key - 6 hex digit ICAO address
	Registration     string // Aircraft registration (e.g., N12345)
	TypeCode         string // ICAO type designator (e.g., B738)
	ManufacturerName string // Manufacturer name
	Model            string // Aircraft model
	Operator         string // Operator name
	OperatorCallsign string // Operator radio callsign
	OperatorICAO     string // Operator ICAO code
	Owner            string // Owner name
	Country          string // Country of registration
	Built            string // Year built
}

// Describe returns a short human readable label such as "N12345 B738 United Airlines"
func (a *AircraftInfo) Describe() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if a.Registration != "" {
		parts = append(parts, a.Registration)
	}
	switch {
	case a.TypeCode != "":
		parts = append(parts, a.TypeCode)
	case a.Model != "":
		parts = append(parts, a.Model)
	}
	if a.Operator != "" {
		parts = append(parts, a.Operator)
	}
	return strings.Join(parts, " ")
}
