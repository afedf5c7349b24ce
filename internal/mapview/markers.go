package mapview

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

// ShipMarker is the map entry for one vessel. ID changes every time the
// marker is rebuilt.
type ShipMarker struct {
	ID          uint64           `json:"id"`
	Key         string           `json:"key"`
	Position    geo.LatLng       `json:"position"`
	Bearing     float64          `json:"bearing"`
	Tier        models.DelayTier `json:"-"`
	Color       string           `json:"color"`
	Icon        template.HTML    `json:"icon"`
	Popup       template.HTML    `json:"popup"`
	PopupAnchor geo.LatLng       `json:"popup_anchor"`
	Record      models.ETA       `json:"record"`
}

type PortMarker struct {
	ID       uint64        `json:"id"`
	Key      string        `json:"key"`
	PortID   int           `json:"port_id"`
	Name     string        `json:"name"`
	Position geo.LatLng    `json:"position"`
	Icon     template.HTML `json:"icon"`
	Popup    template.HTML `json:"popup"`
}

type LayerKind string

const (
	LayerStormCenter  LayerKind = "storm-center"
	LayerStormImpact  LayerKind = "storm-impact"
	LayerStormWarning LayerKind = "storm-warning"
)

// StormLayer is one drawable piece of a storm: its center marker or one of
// its two circles.
type StormLayer struct {
	Kind      LayerKind          `json:"kind"`
	Center    geo.LatLng         `json:"center"`
	RadiusM   float64            `json:"radius_m,omitempty"`
	Color     string             `json:"color"`
	FillColor string             `json:"fill_color,omitempty"`
	Dashed    bool               `json:"dashed,omitempty"`
	Status    models.StormStatus `json:"status"`
	Icon      template.HTML      `json:"icon,omitempty"`
	Popup     template.HTML      `json:"popup,omitempty"`
}

// Delay tier colors.
const (
	ColorOnTime  = "#22c55e"
	ColorWarning = "#f97316"
	ColorSevere  = "#ef4444"
)

func TierColor(t models.DelayTier) string {
	switch t {
	case models.DelayOnTime:
		return ColorOnTime
	case models.DelaySevere:
		return ColorSevere
	default:
		return ColorWarning
	}
}

type stormStyle struct {
	Class string
	Emoji string
	Color string
	Text  string
}

func styleForStorm(s models.StormStatus) stormStyle {
	switch s {
	case models.StormSuper:
		return stormStyle{Class: "super-typhoon", Emoji: "🌪️", Color: "#ff0000", Text: "text-red-600"}
	case models.StormStrong:
		return stormStyle{Class: "strong-typhoon", Emoji: "🌀", Color: "#ffa500", Text: "text-orange-600"}
	case models.StormTyphoon:
		return stormStyle{Class: "typhoon", Emoji: "🌊", Color: "#ffff00", Text: "text-yellow-600"}
	default:
		return stormStyle{Class: "tropical-depression", Emoji: "🌧️", Color: "#0000ff", Text: "text-blue-600"}
	}
}

var templates = template.Must(template.New("mapview").Funcs(template.FuncMap{
	"coord": func(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) },
	"num":   func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
}).Parse(`
{{define "ship-icon"}}<div class="ship-marker"><svg width="24" height="24" viewBox="0 0 100 100"><g transform="translate(50,50) rotate({{.Bearing}})"><path d="M0,-40 L20,20 L0,10 L-20,20 Z" fill="{{.Color}}" stroke="#ffffff" stroke-width="2"/></g></svg></div>{{end}}

{{define "ship-popup"}}<div class="ship-popup">
<div class="ship-header"><h3 class="ship-name">{{.Name}}</h3><div class="status-badge {{.BadgeClass}}">{{.BadgeText}}</div></div>
<div class="info-grid">
<div class="info-item"><span class="info-label">📍 Tuyến:</span> <span class="info-value">{{.From}} → {{.To}}</span></div>
<div class="info-item"><span class="info-label">🌍 Vị trí:</span> <span class="info-value">{{coord .Lat}}°N, {{coord .Lng}}°E</span></div>
<div class="info-item"><span class="info-label">⏰ ETA:</span> <span class="info-value">{{.ETA}}</span></div>
<div class="info-item"><span class="info-label">⌛ Độ trễ:</span> <span class="info-value {{if gt .Delay 0.0}}text-red-600{{else}}text-green-600{{end}}">{{if gt .Delay 0.0}}+{{num .Delay}} giờ{{else}}Không có{{end}}</span></div>
</div>
{{- if .Reason}}
<div class="warning-box info"><span class="text-orange-600">ℹ️</span> {{.Reason}}</div>
{{- end}}
{{- if .Hazard}}
<div class="warning-box danger"><span class="text-red-600">⚠️</span> Cách vùng nguy hiểm: {{printf "%.1f" .Hazard}} km</div>
{{- end}}
</div>{{end}}

{{define "port-icon"}}<div style="width: 28px; height: 28px;"><svg viewBox="0 0 100 100" style="width: 100%; height: 100%;"><g transform="translate(50,50)"><path d="M 0,-35 L 0,20 M -20,-15 L 0,-25 L 20,-15 M -22,10 C -22,10 -12,30 0,10 C 12,30 22,10 22,10" stroke="#3b82f6" stroke-width="6" stroke-linecap="round" stroke-linejoin="round" fill="none"/></g></svg></div>{{end}}

{{define "port-popup"}}<div class="text-center"><h3 class="text-base font-semibold border-b border-gray-200 pb-1 mb-1">{{.Name}}</h3><div class="text-sm text-gray-600">{{.Region}}, {{.Country}}</div></div>{{end}}

{{define "storm-icon"}}<div class="storm-marker {{.Style.Class}}">{{.Style.Emoji}}</div>{{end}}

{{define "storm-popup"}}<div class="storm-popup">
<h3 class="font-bold">{{.Alert.Message}}</h3>
<p class="text-sm mt-1">Vị trí: {{coord .Lat}}°N, {{coord .Lng}}°E</p>
<p class="text-sm mt-1">Tốc độ gió: {{num .Alert.WindKmh.Float}} km/h</p>
<p class="text-sm mt-1">Bán kính ảnh hưởng: {{num .Alert.RadiusKm.Float}} km</p>
<p class="text-sm mt-1">Bán kính cảnh báo: {{num .Alert.WarningRadiusKm.Float}} km</p>
<p class="text-sm mt-1 {{.Style.Text}}">{{.Alert.Status}}</p>
</div>{{end}}
`))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("error rendering %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func badgeFor(t models.DelayTier) (class, text string) {
	switch t {
	case models.DelayOnTime:
		return "on-time", "Đúng giờ"
	case models.DelaySevere:
		return "delayed", "Trễ nhiều"
	default:
		return "warning", "Cảnh báo"
	}
}

func shipIcon(bearing float64, color string) (template.HTML, error) {
	return execute("ship-icon", struct {
		Bearing string
		Color   string
	}{Bearing: strconv.FormatFloat(bearing, 'f', 2, 64), Color: color})
}

func shipPopup(e models.ETA, pos geo.LatLng, tier models.DelayTier) (template.HTML, error) {
	class, text := badgeFor(tier)
	hazard, _ := e.HazardDistance()
	return execute("ship-popup", struct {
		Name, BadgeClass, BadgeText string
		From, To, ETA, Reason       string
		Lat, Lng, Delay, Hazard     float64
	}{
		Name:       e.ShipName,
		BadgeClass: class,
		BadgeText:  text,
		From:       e.PortFrom,
		To:         e.PortTo,
		ETA:        e.ExpectedText(),
		Reason:     e.Reason,
		Lat:        pos.Lat,
		Lng:        pos.Lng,
		Delay:      e.Delay(),
		Hazard:     hazard,
	})
}

func portIcon() (template.HTML, error) {
	return execute("port-icon", nil)
}

func portPopup(p models.Port) (template.HTML, error) {
	return execute("port-popup", p)
}

func stormIcon(s models.StormStatus) (template.HTML, error) {
	return execute("storm-icon", struct{ Style stormStyle }{styleForStorm(s)})
}

func stormPopup(a models.StormAlert) (template.HTML, error) {
	c, _ := a.Position()
	return execute("storm-popup", struct {
		Alert    models.StormAlert
		Style    stormStyle
		Lat, Lng float64
	}{Alert: a, Style: styleForStorm(a.Status), Lat: c.Lat, Lng: c.Lng})
}
