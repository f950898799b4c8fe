package models

import (
	"fmt"
)

// SBS-1 (BaseStation) format constants, as emitted by dump1090 on port 30003
const (
	// SBSRecordMSG is the only record type carrying aircraft data
	SBSRecordMSG = "MSG"

	// SBSFieldCount is the number of comma separated fields in a MSG line
	SBSFieldCount = 22

	// SBSDateLayout and SBSTimeLayout describe the generated/logged columns.
	// Fractional seconds after the seconds field are accepted when parsing.
	SBSDateLayout = "2006/01/02"
	SBSTimeLayout = "15:04:05"
)

// Field positions within a MSG line
const (
	sbsFieldRecordType = iota
	sbsFieldTransmissionType
	sbsFieldSessionID
	sbsFieldAircraftID
	sbsFieldHexIdent
	sbsFieldFlightID
	sbsFieldDateGenerated
	sbsFieldTimeGenerated
	sbsFieldDateLogged
	sbsFieldTimeLogged
	sbsFieldCallsign
	sbsFieldAltitude
	sbsFieldGroundSpeed
	sbsFieldTrack
	sbsFieldLatitude
	sbsFieldLongitude
	sbsFieldVerticalRate
	sbsFieldSquawk
	sbsFieldAlert
	sbsFieldEmergency
	sbsFieldSPI
	sbsFieldOnGround
)

// SBS transmission types (second field of a MSG line)
const (
	SBSTransmissionIdentification   = 1 // callsign
	SBSTransmissionSurfacePosition  = 2 // altitude, speed, track, position, on-ground
	SBSTransmissionAirbornePosition = 3 // altitude, position, flags
	SBSTransmissionAirborneVelocity = 4 // speed, track, vertical rate
	SBSTransmissionSurveillanceAlt  = 5 // altitude, flags
	SBSTransmissionSurveillanceID   = 6 // altitude, squawk, flags
	SBSTransmissionAirToAir         = 7 // altitude
	SBSTransmissionAllCallReply     = 8 // on-ground
)

// SBSTransmissionName returns a label for a transmission type, used in logs
func SBSTransmissionName(tt int) (string, error) {
	switch tt {
	case SBSTransmissionIdentification:
		return "identification", nil
	case SBSTransmissionSurfacePosition:
		return "surface_position", nil
	case SBSTransmissionAirbornePosition:
		return "airborne_position", nil
	case SBSTransmissionAirborneVelocity:
		return "airborne_velocity", nil
	case SBSTransmissionSurveillanceAlt:
		return "surveillance_altitude", nil
	case SBSTransmissionSurveillanceID:
		return "surveillance_id", nil
	case SBSTransmissionAirToAir:
		return "air_to_air", nil
	case SBSTransmissionAllCallReply:
		return "all_call_reply", nil
	default:
		return "", fmt.Errorf("unknown sbs transmission type: %d", tt)
	}
}
