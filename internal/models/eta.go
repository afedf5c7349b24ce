package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
)

// ETA is the arrival estimate for one tracked vessel. ShipName is the
// identity key.
type ETA struct {
	ShipName         string  `json:"ship_name"`
	PortFrom         string  `json:"port_from"`
	PortTo           string  `json:"port_to"`
	ETAExpected      string  `json:"eta_expected,omitempty"` // ISO 8601, local time of the API
	DelayHours       Number  `json:"delay_hours"`
	Status           string  `json:"status"`
	Reason           string  `json:"reason,omitempty"`
	DistanceToHazard *Number `json:"distance_to_hazard,omitempty"` // km
	Latitude         *Number `json:"latitude,omitempty"`
	Longitude        *Number `json:"longitude,omitempty"`
}

// UnmarshalJSON tolerates unusable coordinates: a record whose position is
// blank or not numeric still decodes, without a position. Older payloads
// carry the position as latitude_ship/longitude_ship.
func (e *ETA) UnmarshalJSON(data []byte) error {
	type plain ETA
	aux := struct {
		*plain
		Latitude         json.RawMessage `json:"latitude"`
		Longitude        json.RawMessage `json:"longitude"`
		LatitudeShip     json.RawMessage `json:"latitude_ship"`
		LongitudeShip    json.RawMessage `json:"longitude_ship"`
		DistanceToHazard json.RawMessage `json:"distance_to_hazard"`
	}{plain: (*plain)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.Latitude = looseNumber(aux.Latitude)
	if e.Latitude == nil {
		e.Latitude = looseNumber(aux.LatitudeShip)
	}
	e.Longitude = looseNumber(aux.Longitude)
	if e.Longitude == nil {
		e.Longitude = looseNumber(aux.LongitudeShip)
	}
	e.DistanceToHazard = looseNumber(aux.DistanceToHazard)
	return nil
}

// StatusDelayed is the status text the API uses for a late vessel.
const StatusDelayed = "Trễ"

// Position returns the vessel position when both components are present.
// Range validation is left to the caller.
func (e ETA) Position() (geo.LatLng, bool) {
	lat, okLat := optional(e.Latitude)
	lng, okLng := optional(e.Longitude)
	if !okLat || !okLng {
		return geo.LatLng{}, false
	}
	return geo.LatLng{Lat: lat, Lng: lng}, true
}

func (e ETA) Delay() float64 { return e.DelayHours.Float() }

func (e ETA) HazardDistance() (float64, bool) { return optional(e.DistanceToHazard) }

type DelayTier int

const (
	DelayOnTime DelayTier = iota
	DelayWarning
	DelaySevere
)

// SevereDelayHours is the threshold above which a delay is severe.
const SevereDelayHours = 4

// TierForDelay maps delay hours to a tier: exactly zero is on time, more
// than four hours is severe, anything else is a warning.
func TierForDelay(hours float64) DelayTier {
	switch {
	case hours == 0:
		return DelayOnTime
	case hours > SevereDelayHours:
		return DelaySevere
	default:
		return DelayWarning
	}
}

func (t DelayTier) String() string {
	switch t {
	case DelayOnTime:
		return "on-time"
	case DelaySevere:
		return "severe"
	default:
		return "warning"
	}
}

// APIStatus is the status string the shipping API derives from a delay.
func APIStatus(hours float64) string {
	switch TierForDelay(hours) {
	case DelayOnTime:
		return "active"
	case DelaySevere:
		return "inactive"
	default:
		return "warning"
	}
}

// Ship is the condensed vessel view served by /api/ships.
type Ship struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Route      string   `json:"route"`
	ETA        string   `json:"eta"`
	DelayHours float64  `json:"delay_hours"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

// DisplayTimeLayout is day/month/year, the order the dashboard shows dates in.
const DisplayTimeLayout = "02/01/2006 15:04"

var expectedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// Expected parses ETAExpected. Timestamps without a zone keep their wall
// clock and are reported in UTC.
func (e ETA) Expected() (time.Time, bool) {
	s := strings.TrimSpace(e.ETAExpected)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range expectedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExpectedText formats ETAExpected for display, or "N/A".
func (e ETA) ExpectedText() string {
	t, ok := e.Expected()
	if !ok {
		return "N/A"
	}
	return t.Format(DisplayTimeLayout)
}
