package models

import (
	"encoding/json"
	"strings"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
)

const (
	PortStatusStable     = "ổn định"
	PortStatusBusy       = "bận"
	PortStatusOverloaded = "quá tải"
)

type Location struct {
	Latitude  *Number `json:"latitude"`
	Longitude *Number `json:"longitude"`
}

func (l *Location) UnmarshalJSON(data []byte) error {
	var aux struct {
		Latitude  json.RawMessage `json:"latitude"`
		Longitude json.RawMessage `json:"longitude"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Latitude = looseNumber(aux.Latitude)
	l.Longitude = looseNumber(aux.Longitude)
	return nil
}

type Port struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Region         string   `json:"region"`
	Country        string   `json:"country"`
	Location       Location `json:"location"`
	Status         string   `json:"status"`
	DockedShips    int      `json:"dockedShips"`
	Capacity       int      `json:"capacity"`
	AvailableSlots int      `json:"availableSlots"`
	AvgWaitingTime string   `json:"avgWaitingTime,omitempty"`
	LastUpdated    string   `json:"last_updated,omitempty"`
}

// UnmarshalJSON accepts the older flat shape (port_name, latitude, longitude)
// alongside the nested location object.
func (p *Port) UnmarshalJSON(data []byte) error {
	type plain Port
	aux := struct {
		*plain
		PortName  string          `json:"port_name"`
		PortID    int             `json:"port_id"`
		Latitude  json.RawMessage `json:"latitude"`
		Longitude json.RawMessage `json:"longitude"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if p.Name == "" {
		p.Name = aux.PortName
	}
	if p.ID == 0 {
		p.ID = aux.PortID
	}
	if p.Location.Latitude == nil {
		p.Location.Latitude = looseNumber(aux.Latitude)
	}
	if p.Location.Longitude == nil {
		p.Location.Longitude = looseNumber(aux.Longitude)
	}
	return nil
}

// Key is the lookup key used for map markers and bearing targets.
func (p Port) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Name))
}

func (p Port) Position() (geo.LatLng, bool) {
	lat, okLat := optional(p.Location.Latitude)
	lng, okLng := optional(p.Location.Longitude)
	if !okLat || !okLng {
		return geo.LatLng{}, false
	}
	return geo.LatLng{Lat: lat, Lng: lng}, true
}

// NormalizePortStatus lowercases a status and defaults empty values to stable.
func NormalizePortStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PortStatusStable
	}
	return s
}

type PortLoad int

const (
	PortLoadStable PortLoad = iota
	PortLoadBusy
	PortLoadOverloaded
)

func (p Port) Load() PortLoad {
	switch NormalizePortStatus(p.Status) {
	case PortStatusStable:
		return PortLoadStable
	case PortStatusBusy:
		return PortLoadBusy
	default:
		return PortLoadOverloaded
	}
}
