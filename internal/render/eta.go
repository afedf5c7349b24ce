package render

import (
	"strconv"
	"strings"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

const (
	MsgETALoading = "Đang tải thông tin ETA..."
	MsgETAEmpty   = "Không có thông tin ETA"
)

// Status is how an ETA row's status badge is drawn.
type Status struct {
	Level string // danger, normal or warning
	Text  string
	Class string
}

// StatusFor maps a record to its badge: the API's delayed status wins, then
// a zero delay is normal, anything else is a warning.
func StatusFor(e models.ETA) Status {
	switch {
	case e.Status == models.StatusDelayed:
		return Status{Level: "danger", Text: models.StatusDelayed, Class: "bg-red-100 text-red-800"}
	case e.Delay() == 0:
		return Status{Level: "normal", Text: "Bình thường", Class: "bg-green-100 text-green-800"}
	default:
		return Status{Level: "warning", Text: "Cảnh báo", Class: "bg-yellow-100 text-yellow-800"}
	}
}

// DelayText is "+Xh" for a positive delay and "On time" otherwise.
func DelayText(hours float64) string {
	if hours > 0 {
		return "+" + strconv.FormatFloat(hours, 'f', -1, 64) + "h"
	}
	return "On time"
}

type etaRow struct {
	Even     bool
	Ship     string
	From, To string
	HasPos   bool
	Lat, Lng string
	ETA      string
	Late     bool
	Hours    string
	Delay    string
	Status   Status
}

func newETARow(i int, e models.ETA) etaRow {
	r := etaRow{
		Even:   i%2 == 0,
		Ship:   e.ShipName,
		From:   e.PortFrom,
		To:     e.PortTo,
		ETA:    e.ExpectedText(),
		Late:   e.Delay() > 0,
		Hours:  strconv.FormatFloat(e.Delay(), 'f', -1, 64),
		Delay:  DelayText(e.Delay()),
		Status: StatusFor(e),
	}
	if pos, ok := e.Position(); ok {
		r.HasPos = true
		r.Lat = formatCoord(pos.Lat)
		r.Lng = formatCoord(pos.Lng)
	}
	return r
}

func (r etaRow) text() string {
	pos := "N/A"
	if r.HasPos {
		pos = r.Lat + "°N " + r.Lng + "°E"
	}
	return strings.Join([]string{r.Ship, r.From, "→", r.To, pos, r.ETA, r.Delay, r.Status.Text}, " ")
}

// ETATable renders the arrival table.
type ETATable struct{}

// Render replaces c's content. A nil snapshot means nothing has loaded yet.
func (ETATable) Render(c Container, records []models.ETA) error {
	if records == nil {
		return execute(c, "message", MsgETALoading)
	}
	if len(records) == 0 {
		return execute(c, "message", MsgETAEmpty)
	}

	rows := make([]etaRow, len(records))
	for i, e := range records {
		rows[i] = newETARow(i, e)
	}
	return execute(c, "eta-table", rows)
}

// FilterETA keeps the records whose rendered row contains query, ignoring
// case. An empty query returns records unchanged.
func FilterETA(records []models.ETA, query string) []models.ETA {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || records == nil {
		return records
	}

	out := make([]models.ETA, 0, len(records))
	for i, e := range records {
		if strings.Contains(strings.ToLower(newETARow(i, e).text()), q) {
			out = append(out, e)
		}
	}
	return out
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
