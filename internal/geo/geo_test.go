package geo

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"corners", -90, 180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -91, 0, false},
		{"lng too high", 0, 180.5, false},
		{"lng too low", 0, -181, false},
		{"nan", math.NaN(), 10, false},
		{"inf", 10, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Valid(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestBearing_DueEastOnEquator(t *testing.T) {
	got := Bearing(LatLng{Lat: 0, Lng: 100}, LatLng{Lat: 0, Lng: 110})
	if math.Abs(got-90) > epsilon {
		t.Errorf("expected 90, got %v", got)
	}
}

func TestBearing_EastAtLatitudeTen(t *testing.T) {
	// The initial great-circle heading between two points on the same
	// parallel bends slightly poleward.
	got := Bearing(LatLng{Lat: 10, Lng: 100}, LatLng{Lat: 10, Lng: 110})

	lat := 10 * math.Pi / 180
	d := 10 * math.Pi / 180
	y := math.Sin(d) * math.Cos(lat)
	x := math.Cos(lat)*math.Sin(lat) - math.Sin(lat)*math.Cos(lat)*math.Cos(d)
	want := math.Atan2(y, x) * 180 / math.Pi

	if math.Abs(got-want) > epsilon {
		t.Errorf("expected %v, got %v", want, got)
	}
	if math.Abs(got-90) > 1 {
		t.Errorf("expected roughly due east, got %v", got)
	}
}

func TestBearing_Normalized(t *testing.T) {
	tests := []struct {
		name string
		to   LatLng
		want float64
	}{
		{"north", LatLng{Lat: 10, Lng: 0}, 0},
		{"south", LatLng{Lat: -10, Lng: 0}, 180},
		{"west", LatLng{Lat: 0, Lng: -10}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(LatLng{}, tt.to)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got < 0 || got >= 360 {
				t.Errorf("bearing %v outside [0,360)", got)
			}
		})
	}
}

func TestBounds_PadAndContains(t *testing.T) {
	b := Bounds{
		SouthWest: LatLng{Lat: 0, Lng: 100},
		NorthEast: LatLng{Lat: 10, Lng: 120},
	}
	inset := b.Pad(-0.1)

	if inset.SouthWest.Lat != 1 || inset.NorthEast.Lat != 9 {
		t.Errorf("unexpected lat inset: %+v", inset)
	}
	if inset.SouthWest.Lng != 102 || inset.NorthEast.Lng != 118 {
		t.Errorf("unexpected lng inset: %+v", inset)
	}

	if !b.Contains(LatLng{Lat: 0.5, Lng: 101}) {
		t.Error("expected point inside original bounds")
	}
	if inset.Contains(LatLng{Lat: 0.5, Lng: 101}) {
		t.Error("expected point outside inset bounds")
	}
}

func TestProjectRoundTrip(t *testing.T) {
	for _, p := range []LatLng{{0, 0}, {15.5, 112}, {-33.9, 151.2}, {60, -30}} {
		pt := Project(p, 5)
		back := Unproject(pt, 5)
		if math.Abs(back.Lat-p.Lat) > 1e-6 || math.Abs(back.Lng-p.Lng) > 1e-6 {
			t.Errorf("round trip %v -> %v -> %v", p, pt, back)
		}
	}
}

func TestProject_WorldCenter(t *testing.T) {
	pt := Project(LatLng{}, 0)
	if pt.X != 128 || math.Abs(pt.Y-128) > epsilon {
		t.Errorf("expected (128,128), got %+v", pt)
	}
}

func TestClamp(t *testing.T) {
	size := Point{X: 800, Y: 600}

	got := Clamp(Point{X: -20, Y: 900}, size, 50)
	if got.X != 50 || got.Y != 550 {
		t.Errorf("expected (50,550), got %+v", got)
	}

	if Inside(Point{X: -1, Y: 10}, size) {
		t.Error("expected point outside")
	}
	if !Inside(Point{X: 400, Y: 300}, size) {
		t.Error("expected point inside")
	}
}
