package mapview

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

func ship(name string, lat, lng, delay float64) models.ETA {
	return models.ETA{
		ShipName:   name,
		PortFrom:   "Hai Phong",
		PortTo:     "Da Nang",
		DelayHours: models.Number(delay),
		Latitude:   models.NewNumber(lat),
		Longitude:  models.NewNumber(lng),
	}
}

func port(id int, name string, lat, lng float64) models.Port {
	return models.Port{
		ID:       id,
		Name:     name,
		Region:   "Central",
		Country:  "Vietnam",
		Location: models.Location{Latitude: models.NewNumber(lat), Longitude: models.NewNumber(lng)},
	}
}

func TestAddShipMarker_RejectsOutOfRange(t *testing.T) {
	m := New(1280, 720)
	if err := m.AddShipMarker(ship("Keeper", 10, 100, 0)); err != nil {
		t.Fatalf("AddShipMarker: %v", err)
	}
	before := m.State()

	bad := [][2]float64{{91, 100}, {-90.5, 0}, {10, 180.01}, {10, -181}, {math.NaN(), 0}}
	for _, c := range bad {
		err := m.AddShipMarker(ship("Keeper", c[0], c[1], 0))
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("(%v,%v): expected ErrInvalidCoordinates, got %v", c[0], c[1], err)
		}
	}

	after := m.State()
	if len(after.Ships) != 1 || after.Ships[0].ID != before.Ships[0].ID {
		t.Errorf("rejected input changed state: before %+v after %+v", before.Ships, after.Ships)
	}
}

func TestAddShipMarker_MissingNameOrPosition(t *testing.T) {
	m := New(1280, 720)

	if err := m.AddShipMarker(ship("  ", 10, 100, 0)); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	noPos := models.ETA{ShipName: "Ghost"}
	if err := m.AddShipMarker(noPos); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
	if m.ShipCount() != 0 {
		t.Errorf("expected no markers, got %d", m.ShipCount())
	}
}

func TestAddShipMarker_RejectsBlankCoordinates(t *testing.T) {
	m := New(1280, 720)

	var ghost models.ETA
	if err := json.Unmarshal([]byte(`{"ship_name":"Ghost","latitude":"","longitude":""}`), &ghost); err != nil {
		t.Fatal(err)
	}
	if err := m.AddShipMarker(ghost); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
	if m.ShipCount() != 0 {
		t.Errorf("expected no marker at (0,0), got %d markers", m.ShipCount())
	}
}

func TestAddShipMarker_ReplacesExistingKey(t *testing.T) {
	m := New(1280, 720)

	if err := m.AddShipMarker(ship("Aurora", 10, 100, 0)); err != nil {
		t.Fatal(err)
	}
	first := m.State().Ships[0]

	if err := m.AddShipMarker(ship("Aurora", 11, 101, 5)); err != nil {
		t.Fatal(err)
	}
	s := m.State()
	if len(s.Ships) != 1 {
		t.Fatalf("expected exactly one marker, got %d", len(s.Ships))
	}
	got := s.Ships[0]
	if got.ID == first.ID {
		t.Error("expected a rebuilt marker")
	}
	if got.Position != (geo.LatLng{Lat: 11, Lng: 101}) || got.Color != ColorSevere {
		t.Errorf("unexpected replacement %+v", got)
	}
}

func TestAddShipMarker_BearingToDestination(t *testing.T) {
	m := New(1280, 720)
	if _, err := m.AddPorts([]models.Port{port(1, "Da Nang", 10, 110)}); err != nil {
		t.Fatal(err)
	}

	e := ship("Eastbound", 10, 100, 0)
	e.PortTo = "DA NANG"
	if err := m.AddShipMarker(e); err != nil {
		t.Fatal(err)
	}

	sm := m.State().Ships[0]
	if math.Abs(sm.Bearing-90) > 1 {
		t.Errorf("bearing = %v, want about 90", sm.Bearing)
	}
	if !strings.Contains(string(sm.Icon), "rotate(") {
		t.Errorf("icon is not rotated: %s", sm.Icon)
	}

	unknown := ship("Drifter", 10, 100, 0)
	unknown.PortTo = "Atlantis"
	if err := m.AddShipMarker(unknown); err != nil {
		t.Fatal(err)
	}
	for _, s := range m.State().Ships {
		if s.Key == "Drifter" && s.Bearing != 0 {
			t.Errorf("unknown destination should point north, got %v", s.Bearing)
		}
	}
}

func TestAddShipMarker_TierColors(t *testing.T) {
	cases := []struct {
		delay float64
		color string
	}{
		{0, ColorOnTime},
		{2, ColorWarning},
		{4, ColorWarning},
		{5, ColorSevere},
	}
	m := New(1280, 720)
	for _, tc := range cases {
		if err := m.AddShipMarker(ship("S", 10, 100, tc.delay)); err != nil {
			t.Fatal(err)
		}
		if got := m.State().Ships[0].Color; got != tc.color {
			t.Errorf("delay %v: color %s, want %s", tc.delay, got, tc.color)
		}
	}
}

func TestShipPopup_Content(t *testing.T) {
	m := New(1280, 720)
	e := ship("Aurora <1>", 16.05, 108.2, 2.5)
	e.Reason = "Bão"
	e.DistanceToHazard = models.NewNumber(42.25)
	e.ETAExpected = "2024-09-15T08:30:00"
	if err := m.AddShipMarker(e); err != nil {
		t.Fatal(err)
	}

	popup := string(m.State().Ships[0].Popup)
	for _, want := range []string{
		"Aurora &lt;1&gt;",
		"Hai Phong → Da Nang",
		"16.0500°N, 108.2000°E",
		"15/09/2024 08:30",
		"+2.5 giờ",
		"Cảnh báo",
		"Cách vùng nguy hiểm: 42.2 km",
	} {
		if !strings.Contains(popup, want) {
			t.Errorf("popup missing %q:\n%s", want, popup)
		}
	}
}

func TestAddPorts_RebuildsAndSkipsInvalid(t *testing.T) {
	m := New(1280, 720)
	n, err := m.AddPorts([]models.Port{
		port(1, "Hai Phong", 20.86, 106.68),
		port(2, "Nowhere", 95, 106),
		port(3, "", 10, 100),
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 port, got %d", n)
	}
	if _, ok := m.PortPosition("HAI PHONG"); !ok {
		t.Error("expected lookup by lowercased name")
	}

	if _, err := m.AddPorts([]models.Port{port(4, "Cai Mep", 10.53, 107.03)}); err != nil {
		t.Fatal(err)
	}
	s := m.State()
	if len(s.Ports) != 1 || s.Ports[0].Key != "cai mep" {
		t.Errorf("expected ports to be replaced, got %+v", s.Ports)
	}
	if _, ok := m.PortPosition("hai phong"); ok {
		t.Error("old lookup entry survived")
	}
	if !strings.Contains(string(s.Ports[0].Popup), "Central, Vietnam") {
		t.Errorf("port popup = %s", s.Ports[0].Popup)
	}
}

func TestFocusShip(t *testing.T) {
	m := New(1280, 720)
	if m.FocusShip("absent") {
		t.Error("expected false for unknown ship")
	}
	if v := m.View(); v.Zoom != DefaultZoom || v.Center != DefaultCenter {
		t.Errorf("view changed on miss: %+v", v)
	}

	if err := m.AddShipMarker(ship("Aurora", 12, 109, 0)); err != nil {
		t.Fatal(err)
	}
	if !m.FocusShip("Aurora") {
		t.Fatal("expected focus to succeed")
	}
	v := m.View()
	if v.Zoom != FocusZoom || v.Center != (geo.LatLng{Lat: 12, Lng: 109}) {
		t.Errorf("unexpected view %+v", v)
	}
	if m.State().OpenPopup != "Aurora" {
		t.Error("expected popup to be open")
	}
}

func TestOpenPopup_AutoCenters(t *testing.T) {
	m := New(1280, 720)
	if err := m.AddShipMarker(ship("Near", 15.5, 120, 0)); err != nil {
		t.Fatal(err)
	}
	if err := m.AddShipMarker(ship("Edge", 15.5, 137, 0)); err != nil {
		t.Fatal(err)
	}

	if err := m.OpenPopup("Near"); err != nil {
		t.Fatal(err)
	}
	if m.View().Center != DefaultCenter {
		t.Errorf("view moved for a marker inside the inset bounds: %+v", m.View())
	}

	if err := m.OpenPopup("Edge"); err != nil {
		t.Fatal(err)
	}
	if c := m.View().Center; c != (geo.LatLng{Lat: 15.5, Lng: 137}) {
		t.Errorf("expected re-center on Edge, got %+v", c)
	}
	if m.State().OpenPopup != "Edge" {
		t.Error("opening a popup should close the previous one")
	}

	if err := m.OpenPopup("missing"); !errors.Is(err, ErrNoMarker) {
		t.Errorf("expected ErrNoMarker, got %v", err)
	}
}

func TestOnViewChanged_ClampsPopupIntoView(t *testing.T) {
	m := New(1280, 720)
	pos := geo.LatLng{Lat: 15.5, Lng: 112}
	if err := m.AddShipMarker(ship("Aurora", pos.Lat, pos.Lng, 0)); err != nil {
		t.Fatal(err)
	}
	if err := m.OpenPopup("Aurora"); err != nil {
		t.Fatal(err)
	}

	if err := m.SetView(geo.LatLng{Lat: 15.5, Lng: 150}, DefaultZoom); err != nil {
		t.Fatal(err)
	}

	s := m.State()
	anchor := s.Ships[0].PopupAnchor
	if anchor == pos {
		t.Fatal("expected the popup anchor to move")
	}
	pt := s.View.ContainerPoint(anchor)
	if math.Abs(pt.X-popupPadding) > 1e-6 || math.Abs(pt.Y-360) > 1e-6 {
		t.Errorf("anchor projects to %+v, want (50, 360)", pt)
	}

	// Back in view, the popup returns to its marker.
	if err := m.SetView(pos, DefaultZoom); err != nil {
		t.Fatal(err)
	}
	if got := m.State().Ships[0].PopupAnchor; got != pos {
		t.Errorf("anchor = %+v, want %+v", got, pos)
	}
}

func TestResize_TriggersCorrection(t *testing.T) {
	m := New(1280, 720)
	if err := m.AddShipMarker(ship("Aurora", 15.5, 130, 0)); err != nil {
		t.Fatal(err)
	}
	if err := m.OpenPopup("Aurora"); err != nil {
		t.Fatal(err)
	}

	if err := m.Resize(400, 300); err != nil {
		t.Fatal(err)
	}
	s := m.State()
	pt := s.View.ContainerPoint(s.Ships[0].PopupAnchor)
	if !geo.Inside(pt, geo.Point{X: 400, Y: 300}) {
		t.Errorf("anchor outside resized view: %+v", pt)
	}

	if err := m.Resize(0, 300); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestSetStormAlerts(t *testing.T) {
	m := New(1280, 720)
	alerts := []models.StormAlert{
		{Message: "Yagi", Status: models.StormSuper, Latitude: models.NewNumber(18), Longitude: models.NewNumber(112), RadiusKm: 100, WarningRadiusKm: 300, WindKmh: 200},
		{Message: "Lost", Status: models.StormTyphoon, Latitude: models.NewNumber(100), Longitude: models.NewNumber(112)},
	}
	n, err := m.SetStormAlerts(alerts)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 storm drawn, got %d", n)
	}

	layers := m.State().Storms
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	if layers[1].Kind != LayerStormImpact || layers[1].RadiusM != 100000 || layers[1].Color != "#ff0000" {
		t.Errorf("unexpected impact circle %+v", layers[1])
	}
	if layers[2].Kind != LayerStormWarning || layers[2].RadiusM != 300000 || !layers[2].Dashed {
		t.Errorf("unexpected warning circle %+v", layers[2])
	}

	n, err = m.SetStormAlerts([]models.StormAlert{
		{Message: "Nowhere", Status: models.StormTyphoon, RadiusKm: 100},
		{Message: "Half", Status: models.StormTyphoon, Latitude: models.NewNumber(18)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(m.State().Storms) != 0 {
		t.Errorf("expected storms without a position to be skipped, got %d drawn", n)
	}

	if _, err := m.SetStormAlerts(nil); err != nil {
		t.Fatal(err)
	}
	if len(m.State().Storms) != 0 {
		t.Error("expected storm layers to be cleared")
	}
}

func TestNoMap(t *testing.T) {
	var nilManager *Manager
	if err := nilManager.AddShipMarker(ship("A", 1, 1, 0)); !errors.Is(err, ErrNoMap) {
		t.Errorf("nil manager: %v", err)
	}
	if nilManager.FocusShip("A") {
		t.Error("nil manager focused a ship")
	}

	zero := New(0, 0)
	if err := zero.AddShipMarker(ship("A", 1, 1, 0)); !errors.Is(err, ErrNoMap) {
		t.Errorf("zero-size manager: %v", err)
	}
	if _, err := zero.AddPorts(nil); !errors.Is(err, ErrNoMap) {
		t.Errorf("zero-size AddPorts: %v", err)
	}
	if err := zero.SetView(DefaultCenter, 5); !errors.Is(err, ErrNoMap) {
		t.Errorf("zero-size SetView: %v", err)
	}
}

func TestGeoJSON(t *testing.T) {
	m := New(1280, 720)
	m.AddPorts([]models.Port{port(1, "Da Nang", 16.07, 108.22)})
	m.AddShipMarker(ship("Aurora", 12, 109, 0))
	m.SetStormAlerts([]models.StormAlert{{Message: "Yagi", Latitude: models.NewNumber(18), Longitude: models.NewNumber(112), RadiusKm: 50, WarningRadiusKm: 150}})

	fc := m.GeoJSON()
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %s", fc.Type)
	}
	if len(fc.Features) != 5 {
		t.Fatalf("expected 5 features, got %d", len(fc.Features))
	}

	sf := fc.Features[0]
	if sf.Properties["layer"] != "ship" || sf.Geometry.Coordinates[0] != 109 || sf.Geometry.Coordinates[1] != 12 {
		t.Errorf("unexpected ship feature %+v", sf)
	}
	if fc.Features[3].Properties["radius_m"] != 50000.0 {
		t.Errorf("unexpected impact feature %+v", fc.Features[3].Properties)
	}
}

func TestRetainShips(t *testing.T) {
	m := New(1280, 720)
	for _, name := range []string{"A", "B", "C"} {
		if err := m.AddShipMarker(ship(name, 10, 110, 0)); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.OpenPopup("B"); err != nil {
		t.Fatal(err)
	}

	if removed := m.RetainShips([]string{"A", "Z"}); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	st := m.State()
	if len(st.Ships) != 1 || st.Ships[0].Key != "A" {
		t.Errorf("expected only A to remain, got %+v", st.Ships)
	}
	if st.OpenPopup != "" {
		t.Errorf("expected popup of removed ship to close, got %q", st.OpenPopup)
	}
}
