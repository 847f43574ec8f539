package geo

import "math"

// earthRadiusKm is the mean Earth radius for the spherical model.
const earthRadiusKm = 6371.0

// DistanceKm computes the great-circle distance between two points given in
// decimal degrees, using the haversine formulation:
//
//	a = sin²(Δφ/2) + cos(φ1)·cos(φ2)·sin²(Δλ/2)
//	c = 2·atan2(√a, √(1−a))
//	d = R·c
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	phi1 := deg2rad(lat1)
	phi2 := deg2rad(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
