package geo

import (
	"math"

	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

// earthRadiusMiles is the mean Earth radius used for great-circle math.
const earthRadiusMiles = 3958.7613

// DistanceMiles returns the haversine great-circle distance between two points.
func DistanceMiles(from, to types.Coordinates) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// BoundingBox is a coarse rectangular prefilter around a center point.
// It always contains the full radius circle; callers still need the exact
// distance check for points inside the box.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoxAround computes the bounding box for a radius (miles) around center.
func BoxAround(center types.Coordinates, radiusMiles float64) BoundingBox {
	latDelta := toDegrees(radiusMiles / earthRadiusMiles)

	// The longitude span widens toward the poles. Clamp the cosine so
	// near-polar centers degrade to a full longitude sweep instead of
	// dividing by zero.
	cosLat := math.Cos(toRadians(center.Latitude))
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	lonDelta := toDegrees(radiusMiles / (earthRadiusMiles * cosLat))

	box := BoundingBox{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLon: center.Longitude + lonDelta,
	}
	if box.MinLat < -90 {
		box.MinLat = -90
	}
	if box.MaxLat > 90 {
		box.MaxLat = 90
	}
	if box.MinLon < -180 {
		box.MinLon = -180
	}
	if box.MaxLon > 180 {
		box.MaxLon = 180
	}
	return box
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
