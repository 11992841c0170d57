package service

import "math"

const earthRadiusKm = 6371.0

// HaversineKm computes the great-circle distance in kilometers between
// two points given in decimal degrees. Callers are responsible for
// supplying coordinates in [-90,90]/[-180,180]; out-of-range values
// propagate as NaN-ish distances rather than errors.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRad(deg float64) float64 { return deg * math.Pi / 180.0 }
