package render

import (
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

const (
	MsgAlertsLoading = "Đang tải cảnh báo bão..."
	MsgAlertsEmpty   = "Không có cảnh báo bão"
)

type alertStyle struct {
	Emoji  string
	IconBg string
	Badge  string
}

func alertStyleFor(s models.StormStatus) alertStyle {
	switch s {
	case models.StormSuper:
		return alertStyle{Emoji: "🌪️", IconBg: "bg-red-100", Badge: "bg-red-100 text-red-800"}
	case models.StormStrong:
		return alertStyle{Emoji: "🌀", IconBg: "bg-orange-100", Badge: "bg-orange-100 text-orange-800"}
	case models.StormTyphoon:
		return alertStyle{Emoji: "🌊", IconBg: "bg-yellow-100", Badge: "bg-yellow-100 text-yellow-800"}
	default:
		return alertStyle{Emoji: "🌧️", IconBg: "bg-blue-100", Badge: "bg-blue-100 text-blue-800"}
	}
}

type alertItem struct {
	Message string
	Status  models.StormStatus
	Where   string
	Style   alertStyle
}

// AlertList renders storm alerts in the order received.
type AlertList struct{}

func (AlertList) Render(c Container, alerts []models.StormAlert) error {
	if alerts == nil {
		return execute(c, "message", MsgAlertsLoading)
	}
	if len(alerts) == 0 {
		return execute(c, "message", MsgAlertsEmpty)
	}

	items := make([]alertItem, len(alerts))
	for i, a := range alerts {
		where := "N/A"
		if pos, ok := a.Position(); ok {
			where = formatCoord(pos.Lat) + "°N, " + formatCoord(pos.Lng) + "°E"
		}
		items[i] = alertItem{
			Message: a.Message,
			Status:  a.Status,
			Where:   where,
			Style:   alertStyleFor(a.Status),
		}
	}
	return execute(c, "alert-list", items)
}
