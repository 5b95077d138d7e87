// Package geo holds the great-circle helpers shared by the diff engine and the scenario generator.
package geo

import "math"

// EarthRadiusM is the mean Earth radius used for haversine distances.
const EarthRadiusM = 6371000.0

// DistanceMeters calculates the haversine distance between two lat/lon points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// ValidFix reports whether a GPS pair carries a real fix. A zero in either
// component is the receiver's "no fix" sentinel.
func ValidFix(lat, lon float64) bool {
	return lat != 0 && lon != 0
}

// Offset moves a point distM meters along headingDeg (0 = north, clockwise).
func Offset(lat, lon, headingDeg, distM float64) (float64, float64) {
	h := headingDeg * math.Pi / 180
	dLat := distM * math.Cos(h) / EarthRadiusM
	dLon := distM * math.Sin(h) / (EarthRadiusM * math.Cos(lat*math.Pi/180))
	return lat + dLat*180/math.Pi, lon + dLon*180/math.Pi
}
