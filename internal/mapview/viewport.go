package mapview

import (
	"math"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
)

const (
	MinZoom = 0
	MaxZoom = 19

	// FocusZoom is the zoom used when a ship or port is focused.
	FocusZoom = 8

	popupPadding = 50
	viewInset    = -0.1
)

var DefaultCenter = geo.LatLng{Lat: 15.5, Lng: 112}

const DefaultZoom = 5

// Viewport is the visible map window: a center, a zoom level and a pixel size.
type Viewport struct {
	Center geo.LatLng `json:"center"`
	Zoom   float64    `json:"zoom"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
}

func (v Viewport) size() geo.Point {
	return geo.Point{X: float64(v.Width), Y: float64(v.Height)}
}

// pixelOrigin is the absolute pixel of the container's top-left corner.
func (v Viewport) pixelOrigin() geo.Point {
	return geo.Project(v.Center, v.Zoom).Sub(v.size().Scale(0.5))
}

// ContainerPoint converts a coordinate to pixels relative to the top-left
// corner of the map container.
func (v Viewport) ContainerPoint(p geo.LatLng) geo.Point {
	return geo.Project(p, v.Zoom).Sub(v.pixelOrigin())
}

func (v Viewport) LatLngAt(pt geo.Point) geo.LatLng {
	return geo.Unproject(pt.Add(v.pixelOrigin()), v.Zoom)
}

// Bounds is the geographic rectangle currently visible.
func (v Viewport) Bounds() geo.Bounds {
	nw := v.LatLngAt(geo.Point{})
	se := v.LatLngAt(v.size())
	return geo.Bounds{
		SouthWest: geo.LatLng{Lat: se.Lat, Lng: nw.Lng},
		NorthEast: geo.LatLng{Lat: nw.Lat, Lng: se.Lng},
	}
}

func clampZoom(z float64) float64 {
	return math.Min(math.Max(z, MinZoom), MaxZoom)
}
