package document

import "math"

const earthRadiusKM = 6371.0

// DistanceKM returns the haversine distance between two coordinates, or 0
// when either side has no location.
func DistanceKM(lat1, lng1, lat2, lng2 *float64) float64 {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return 0
	}

	rlat1 := *lat1 * math.Pi / 180
	rlat2 := *lat2 * math.Pi / 180
	dlat := rlat2 - rlat1
	dlng := (*lng2 - *lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
