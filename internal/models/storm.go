package models

import (
	"encoding/json"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
)

type StormStatus string

// Storm statuses, weakest first.
const (
	StormDepression StormStatus = "Áp thấp nhiệt đới"
	StormTyphoon    StormStatus = "Bão"
	StormStrong     StormStatus = "Bão mạnh"
	StormSuper      StormStatus = "Siêu bão"
)

// Rank orders statuses from 0 (depression, or unknown) to 3 (super typhoon).
func (s StormStatus) Rank() int {
	switch s {
	case StormSuper:
		return 3
	case StormStrong:
		return 2
	case StormTyphoon:
		return 1
	default:
		return 0
	}
}

// StormStatusForWind classifies sustained wind speed in km/h.
func StormStatusForWind(kmh float64) StormStatus {
	switch {
	case kmh > 150:
		return StormSuper
	case kmh > 120:
		return StormStrong
	case kmh > 80:
		return StormTyphoon
	default:
		return StormDepression
	}
}

// SeverityForLevel maps a storm category label to an alert severity.
func SeverityForLevel(level string) string {
	switch level {
	case "Super Typhoon":
		return "critical"
	case "Category 5", "Category 4":
		return "high"
	case "Category 3", "Category 2", "Category 1":
		return "medium"
	default:
		return "low"
	}
}

// LevelRank orders category labels for display, strongest first.
func LevelRank(level string) int {
	switch level {
	case "Super Typhoon":
		return 1
	case "Category 5":
		return 2
	case "Category 4":
		return 3
	case "Category 3":
		return 4
	case "Category 2":
		return 5
	case "Category 1":
		return 6
	case "Tropical Storm":
		return 7
	default:
		return 8
	}
}

type StormAlert struct {
	AlertID         int         `json:"alert_id"`
	Message         string      `json:"message"`
	Severity        string      `json:"severity"`
	Status          StormStatus `json:"status"`
	Latitude        *Number     `json:"latitude"`
	Longitude       *Number     `json:"longitude"`
	RadiusKm        Number      `json:"radius_km"`
	WarningRadiusKm Number      `json:"warning_radius_km"`
	WindKmh         Number      `json:"wind_kmh"`
}

func (a *StormAlert) UnmarshalJSON(data []byte) error {
	type plain StormAlert
	aux := struct {
		*plain
		Latitude  json.RawMessage `json:"latitude"`
		Longitude json.RawMessage `json:"longitude"`
	}{plain: (*plain)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Latitude = looseNumber(aux.Latitude)
	a.Longitude = looseNumber(aux.Longitude)
	return nil
}

// Position returns the storm center when both components are present.
func (a StormAlert) Position() (geo.LatLng, bool) {
	lat, okLat := optional(a.Latitude)
	lng, okLng := optional(a.Longitude)
	if !okLat || !okLng {
		return geo.LatLng{}, false
	}
	return geo.LatLng{Lat: lat, Lng: lng}, true
}

// Storm is a raw storm_info row.
type Storm struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	WindKmh         float64 `json:"wind_kmh"`
	Level           string  `json:"level"`
	RadiusKm        float64 `json:"radius_km"`
	WarningRadiusKm float64 `json:"warning_radius_km"`
}

// Alert derives the alert view of a storm.
func (s Storm) Alert() StormAlert {
	return StormAlert{
		AlertID:         s.ID,
		Message:         s.Name,
		Severity:        SeverityForLevel(s.Level),
		Status:          StormStatusForWind(s.WindKmh),
		Latitude:        NewNumber(s.Latitude),
		Longitude:       NewNumber(s.Longitude),
		RadiusKm:        Number(s.RadiusKm),
		WarningRadiusKm: Number(s.WarningRadiusKm),
		WindKmh:         Number(s.WindKmh),
	}
}
