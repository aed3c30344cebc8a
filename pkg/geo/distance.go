package geo

import "math"

// earthRadiusKM matches the value the mobile client uses, so distances agree
// on both sides of the API.
const earthRadiusKM = 6371.0

// DistanceMeters returns the haversine great-circle distance between two
// WGS84 coordinates in meters. Inputs are assumed to be valid lat/lon;
// NaN propagates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c * 1000
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
