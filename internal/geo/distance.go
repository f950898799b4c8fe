package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances
const EarthRadiusMeters = 6371000.0

const degreesToRadians = math.Pi / 180.0

// DistanceMeters returns the great-circle distance between two points given in
// decimal degrees, using the haversine formula on a spherical Earth.
// Longitude differences are taken through sin(dLon/2), so pairs straddling the
// antimeridian or sitting near a pole need no special casing.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * degreesToRadians
	lat2Rad := lat2 * degreesToRadians
	dLat := (lat2 - lat1) * degreesToRadians
	dLon := (lon2 - lon1) * degreesToRadians

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1Rad)*math.Cos(lat2Rad)*sinLon*sinLon

	// rounding can push a just outside [0,1] for near-antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// ValidCoordinate reports whether lat/lon are finite and within the WGS84 ranges
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
