package mapview

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func point(lat, lng float64) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{lng, lat}}
}

// GeoJSON renders a snapshot as Point features. Circles carry their radius in
// meters in the "radius_m" property.
func (s Snapshot) GeoJSON() FeatureCollection {
	features := make([]Feature, 0, len(s.Ships)+len(s.Ports)+len(s.Storms))

	for _, sm := range s.Ships {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(sm.Position.Lat, sm.Position.Lng),
			Properties: map[string]any{
				"layer":        "ship",
				"id":           sm.ID,
				"key":          sm.Key,
				"bearing":      sm.Bearing,
				"tier":         sm.Tier.String(),
				"color":        sm.Color,
				"icon":         string(sm.Icon),
				"popup":        string(sm.Popup),
				"popup_open":   sm.Key == s.OpenPopup,
				"popup_anchor": []float64{sm.PopupAnchor.Lng, sm.PopupAnchor.Lat},
			},
		})
	}

	for _, pm := range s.Ports {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: point(pm.Position.Lat, pm.Position.Lng),
			Properties: map[string]any{
				"layer":   "port",
				"id":      pm.ID,
				"key":     pm.Key,
				"port_id": pm.PortID,
				"name":    pm.Name,
				"icon":    string(pm.Icon),
				"popup":   string(pm.Popup),
			},
		})
	}

	for _, sl := range s.Storms {
		props := map[string]any{
			"layer":  string(sl.Kind),
			"status": string(sl.Status),
			"color":  sl.Color,
		}
		switch sl.Kind {
		case LayerStormCenter:
			props["icon"] = string(sl.Icon)
			props["popup"] = string(sl.Popup)
		default:
			props["radius_m"] = sl.RadiusM
			props["fill_color"] = sl.FillColor
			props["dashed"] = sl.Dashed
		}
		features = append(features, Feature{
			Type:       "Feature",
			Geometry:   point(sl.Center.Lat, sl.Center.Lng),
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// GeoJSON is shorthand for m.State().GeoJSON().
func (m *Manager) GeoJSON() FeatureCollection {
	return m.State().GeoJSON()
}
