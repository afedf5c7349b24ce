package geo

import "math"

const (
	tileSize  = 256
	maxLatMer = 85.0511287798
)

// Point is a pixel position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(o Point) Point     { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point     { return Point{X: p.X - o.X, Y: p.Y - o.Y} }
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

func worldSize(zoom float64) float64 {
	return tileSize * math.Pow(2, zoom)
}

// Project converts a coordinate to absolute Web Mercator pixels at zoom.
// Latitudes beyond the Mercator limit are clamped.
func Project(p LatLng, zoom float64) Point {
	lat := math.Max(math.Min(p.Lat, maxLatMer), -maxLatMer)
	sin := math.Sin(toRadians(lat))
	size := worldSize(zoom)

	x := (p.Lng/360 + 0.5) * size
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * size
	return Point{X: x, Y: y}
}

// Unproject is the inverse of Project.
func Unproject(pt Point, zoom float64) LatLng {
	size := worldSize(zoom)
	lng := (pt.X/size - 0.5) * 360
	n := math.Pi * (1 - 2*pt.Y/size)
	lat := toDegrees(math.Atan(math.Sinh(n)))
	return LatLng{Lat: lat, Lng: lng}
}

// Inside reports whether pt lies in the rectangle [0,size.X]x[0,size.Y].
func Inside(pt, size Point) bool {
	return pt.X >= 0 && pt.X <= size.X && pt.Y >= 0 && pt.Y <= size.Y
}

// Clamp moves pt into the rectangle [pad, size-pad] on both axes.
func Clamp(pt, size Point, pad float64) Point {
	return Point{
		X: math.Min(math.Max(pt.X, pad), size.X-pad),
		Y: math.Min(math.Max(pt.Y, pad), size.Y-pad),
	}
}
