package geo

import (
	"math"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and inside ±90/±180.
func (p LatLng) Valid() bool {
	return Valid(p.Lat, p.Lng)
}

func Valid(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// Bearing returns the initial great-circle heading from one point to another,
// in degrees normalized to [0, 360).
func Bearing(from, to LatLng) float64 {
	dLng := toRadians(to.Lng - from.Lng)
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	angle := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	if angle >= 360 {
		angle = 0
	}
	return angle
}

// Bounds is a south-west / north-east rectangle in degrees.
type Bounds struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
}

// Pad grows the bounds by ratio of their size on every side. A negative ratio
// shrinks them.
func (b Bounds) Pad(ratio float64) Bounds {
	h := math.Abs(b.SouthWest.Lat-b.NorthEast.Lat) * ratio
	w := math.Abs(b.SouthWest.Lng-b.NorthEast.Lng) * ratio
	return Bounds{
		SouthWest: LatLng{Lat: b.SouthWest.Lat - h, Lng: b.SouthWest.Lng - w},
		NorthEast: LatLng{Lat: b.NorthEast.Lat + h, Lng: b.NorthEast.Lng + w},
	}
}

func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}
