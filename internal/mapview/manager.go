package mapview

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

var (
	ErrNoMap              = errors.New("map not initialized")
	ErrMissingName        = errors.New("ship name is required")
	ErrInvalidCoordinates = errors.New("coordinates missing or out of range")
	ErrInvalidSize        = errors.New("map size must be positive")
	ErrNoMarker           = errors.New("no marker for key")
)

// Manager owns the map viewport and every layer drawn on it. All methods are
// safe for concurrent use. A failed call leaves the state unchanged.
type Manager struct {
	mu sync.RWMutex

	view       Viewport
	ships      map[string]*ShipMarker
	ports      map[string]*PortMarker
	portCoords map[string]geo.LatLng
	storms     []StormLayer
	openPopup  string
	nextID     uint64

	log *slog.Logger
}

// New creates a manager with the default view over the South China Sea.
func New(width, height int) *Manager {
	return &Manager{
		view: Viewport{
			Center: DefaultCenter,
			Zoom:   DefaultZoom,
			Width:  width,
			Height: height,
		},
		ships:      make(map[string]*ShipMarker),
		ports:      make(map[string]*PortMarker),
		portCoords: make(map[string]geo.LatLng),
		log:        logging.Component("mapview"),
	}
}

// ready must be called with m.mu held.
func (m *Manager) ready() error {
	if m.view.Width <= 0 || m.view.Height <= 0 {
		return ErrNoMap
	}
	return nil
}

func (m *Manager) id() uint64 {
	m.nextID++
	return m.nextID
}

// AddShipMarker creates or replaces the marker for e.ShipName. The marker
// points at the destination port when its coordinates are known.
func (m *Manager) AddShipMarker(e models.ETA) error {
	if m == nil {
		return ErrNoMap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(e.ShipName) == "" {
		m.log.Warn("rejected ship marker", "reason", ErrMissingName)
		return ErrMissingName
	}
	pos, ok := e.Position()
	if !ok || !pos.Valid() {
		m.log.Warn("rejected ship marker", "ship", e.ShipName, "reason", ErrInvalidCoordinates)
		return fmt.Errorf("ship %q: %w", e.ShipName, ErrInvalidCoordinates)
	}

	var bearing float64
	if dest, ok := m.portCoords[strings.ToLower(strings.TrimSpace(e.PortTo))]; ok {
		bearing = geo.Bearing(pos, dest)
	}

	tier := models.TierForDelay(e.Delay())
	color := TierColor(tier)

	icon, err := shipIcon(bearing, color)
	if err != nil {
		return err
	}
	popup, err := shipPopup(e, pos, tier)
	if err != nil {
		return err
	}

	delete(m.ships, e.ShipName)
	m.ships[e.ShipName] = &ShipMarker{
		ID:          m.id(),
		Key:         e.ShipName,
		Position:    pos,
		Bearing:     bearing,
		Tier:        tier,
		Color:       color,
		Icon:        icon,
		Popup:       popup,
		PopupAnchor: pos,
		Record:      e,
	}

	if m.openPopup == e.ShipName {
		m.correctPopupLocked()
	}
	return nil
}

// RemoveShip drops the marker for key and reports whether it existed.
func (m *Manager) RemoveShip(key string) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ships[key]; !ok {
		return false
	}
	delete(m.ships, key)
	if m.openPopup == key {
		m.openPopup = ""
	}
	return true
}

// RetainShips drops every ship marker whose key is not in keys and returns
// how many were removed.
func (m *Manager) RetainShips(keys []string) int {
	if m == nil {
		return 0
	}
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.ships {
		if _, ok := keep[key]; ok {
			continue
		}
		delete(m.ships, key)
		if m.openPopup == key {
			m.openPopup = ""
		}
		removed++
	}
	return removed
}

// AddPorts replaces every port marker and the destination lookup table.
// Ports without a name or with invalid coordinates are skipped. It returns
// the number of markers placed.
func (m *Manager) AddPorts(ports []models.Port) (int, error) {
	if m == nil {
		return 0, ErrNoMap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return 0, err
	}

	icon, err := portIcon()
	if err != nil {
		return 0, err
	}

	markers := make(map[string]*PortMarker, len(ports))
	coords := make(map[string]geo.LatLng, len(ports))
	for _, p := range ports {
		pos, ok := p.Position()
		if !ok || !pos.Valid() {
			m.log.Warn("skipping port with invalid coordinates", "port", p.Name)
			continue
		}
		key := p.Key()
		if key == "" {
			m.log.Warn("skipping unnamed port", "id", p.ID)
			continue
		}

		popup, err := portPopup(p)
		if err != nil {
			return 0, err
		}
		coords[key] = pos
		markers[key] = &PortMarker{
			ID:       m.id(),
			Key:      key,
			PortID:   p.ID,
			Name:     p.Name,
			Position: pos,
			Icon:     icon,
			Popup:    popup,
		}
	}

	m.ports = markers
	m.portCoords = coords
	return len(markers), nil
}

// PortPosition looks up a destination by name, case-insensitively.
func (m *Manager) PortPosition(name string) (geo.LatLng, bool) {
	if m == nil {
		return geo.LatLng{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.portCoords[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// SetStormAlerts replaces the storm layers. Each alert with valid coordinates
// contributes a center marker, an impact circle and a dashed warning circle.
func (m *Manager) SetStormAlerts(alerts []models.StormAlert) (int, error) {
	if m == nil {
		return 0, ErrNoMap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return 0, err
	}

	layers := make([]StormLayer, 0, 3*len(alerts))
	drawn := 0
	for _, a := range alerts {
		center, ok := a.Position()
		if !ok || !center.Valid() {
			m.log.Warn("skipping storm with invalid coordinates", "storm", a.Message)
			continue
		}

		style := styleForStorm(a.Status)
		icon, err := stormIcon(a.Status)
		if err != nil {
			return 0, err
		}
		popup, err := stormPopup(a)
		if err != nil {
			return 0, err
		}

		layers = append(layers,
			StormLayer{Kind: LayerStormCenter, Center: center, Color: style.Color, Status: a.Status, Icon: icon, Popup: popup},
			StormLayer{Kind: LayerStormImpact, Center: center, RadiusM: a.RadiusKm.Float() * 1000, Color: style.Color, FillColor: style.Color + "33", Status: a.Status},
			StormLayer{Kind: LayerStormWarning, Center: center, RadiusM: a.WarningRadiusKm.Float() * 1000, Color: style.Color, Dashed: true, Status: a.Status},
		)
		drawn++
	}

	m.storms = layers
	return drawn, nil
}

// FocusShip centers the map on a ship at FocusZoom and opens its popup.
// It reports false, changing nothing, when the ship has no marker.
func (m *Manager) FocusShip(key string) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	marker, ok := m.ships[key]
	if !ok || m.ready() != nil {
		return false
	}
	m.view.Center = marker.Position
	m.view.Zoom = FocusZoom
	m.openPopupLocked(marker)
	return true
}

// OpenPopup opens the popup of a ship marker, closing any other. When the
// marker sits outside the view inset by 10% the map re-centers on it.
func (m *Manager) OpenPopup(key string) error {
	if m == nil {
		return ErrNoMap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}

	marker, ok := m.ships[key]
	if !ok {
		return fmt.Errorf("ship %q: %w", key, ErrNoMarker)
	}
	m.openPopupLocked(marker)
	return nil
}

func (m *Manager) openPopupLocked(marker *ShipMarker) {
	m.openPopup = marker.Key
	marker.PopupAnchor = marker.Position

	if !m.view.Bounds().Pad(viewInset).Contains(marker.Position) {
		m.view.Center = marker.Position
	}
	m.correctPopupLocked()
}

func (m *Manager) ClosePopup() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.openPopup = ""
	m.mu.Unlock()
}

// SetView moves the map. Zoom is clamped to the tile range.
func (m *Manager) SetView(center geo.LatLng, zoom float64) error {
	if m == nil {
		return ErrNoMap
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ready(); err != nil {
		return err
	}
	if !center.Valid() {
		return ErrInvalidCoordinates
	}

	m.view.Center = center
	m.view.Zoom = clampZoom(zoom)
	m.correctPopupLocked()
	return nil
}

// CenterOn moves the map to a coordinate at FocusZoom.
func (m *Manager) CenterOn(lat, lng float64) error {
	return m.SetView(geo.LatLng{Lat: lat, Lng: lng}, FocusZoom)
}

func (m *Manager) Resize(width, height int) error {
	if m == nil {
		return ErrNoMap
	}
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.view.Width = width
	m.view.Height = height
	m.correctPopupLocked()
	return nil
}

// OnViewChanged keeps the open popup on screen: when its marker projects
// outside the container, the popup anchor is clamped into the container
// inset by 50 px.
func (m *Manager) OnViewChanged() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready() == nil {
		m.correctPopupLocked()
	}
}

func (m *Manager) correctPopupLocked() {
	marker, ok := m.ships[m.openPopup]
	if !ok {
		m.openPopup = ""
		return
	}

	pt := m.view.ContainerPoint(marker.Position)
	if geo.Inside(pt, m.view.size()) {
		marker.PopupAnchor = marker.Position
		return
	}
	clamped := geo.Clamp(pt, m.view.size(), popupPadding)
	marker.PopupAnchor = m.view.LatLngAt(clamped)
}

func (m *Manager) View() Viewport {
	if m == nil {
		return Viewport{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

// Snapshot is a copy of the manager's layers.
type Snapshot struct {
	View      Viewport     `json:"view"`
	Ships     []ShipMarker `json:"ships"`
	Ports     []PortMarker `json:"ports"`
	Storms    []StormLayer `json:"storms"`
	OpenPopup string       `json:"open_popup,omitempty"`
}

// State returns a copy of every layer, ships and ports sorted by key.
func (m *Manager) State() Snapshot {
	if m == nil {
		return Snapshot{Ships: []ShipMarker{}, Ports: []PortMarker{}, Storms: []StormLayer{}}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		View:      m.view,
		Ships:     make([]ShipMarker, 0, len(m.ships)),
		Ports:     make([]PortMarker, 0, len(m.ports)),
		Storms:    append([]StormLayer{}, m.storms...),
		OpenPopup: m.openPopup,
	}
	for _, sm := range m.ships {
		s.Ships = append(s.Ships, *sm)
	}
	for _, pm := range m.ports {
		s.Ports = append(s.Ports, *pm)
	}
	sort.Slice(s.Ships, func(i, j int) bool { return s.Ships[i].Key < s.Ships[j].Key })
	sort.Slice(s.Ports, func(i, j int) bool { return s.Ports[i].Key < s.Ports[j].Key })
	return s
}

func (m *Manager) ShipCount() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ships)
}
