package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance calculates the great-circle distance between two GPS coordinates
// in kilometers using the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceBetween is the Point form of Distance.
func DistanceBetween(a, b Point) float64 {
	return Distance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// BoundingBox returns the min/max latitude and longitude of a box that
// contains every point within radiusKm of the center. One degree of latitude
// is ~111 km; a degree of longitude shrinks by cos(latitude).
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusKm / 111.0

	lonScale := math.Cos(lat * math.Pi / 180)
	if lonScale < 0.01 {
		lonScale = 0.01 // avoid blowing up near the poles
	}
	lonDelta := radiusKm / (111.0 * lonScale)

	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}
