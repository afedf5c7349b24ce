package render

import (
	"strconv"
	"sync"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

const (
	MsgPortsLoading     = "Đang tải thông tin cảng..."
	MsgPortsEmpty       = "Không có thông tin cảng"
	MsgPortDetailFailed = "Không thể tải thông tin cảng"
)

type portStatus struct {
	Label string
	Badge string
	Dot   string
	Text  string
}

func portStatusFor(p models.Port) portStatus {
	switch p.Load() {
	case models.PortLoadStable:
		return portStatus{Label: "Ổn định", Badge: "bg-green-100 text-green-800 border border-green-200", Dot: "bg-green-500", Text: "text-green-600"}
	case models.PortLoadBusy:
		return portStatus{Label: "Bận", Badge: "bg-yellow-100 text-yellow-800 border border-yellow-200", Dot: "bg-yellow-500", Text: "text-yellow-600"}
	default:
		return portStatus{Label: "Quá tải", Badge: "bg-red-100 text-red-800 border border-red-200", Dot: "bg-red-500", Text: "text-red-600"}
	}
}

type portCard struct {
	CardID   int
	Name     string
	Lat, Lng string
	Country  string
	Status   portStatus
}

// cardID is the port id, or its position in the list when the id is unset.
func cardID(i int, p models.Port) int {
	if p.ID != 0 {
		return p.ID
	}
	return i
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PortList renders port cards and resolves clicks on them. The selection
// callback is fixed at construction.
type PortList struct {
	onSelect func(models.Port)

	mu   sync.RWMutex
	last []models.Port
}

func NewPortList(onSelect func(models.Port)) *PortList {
	return &PortList{onSelect: onSelect}
}

func (l *PortList) Render(c Container, ports []models.Port) error {
	l.mu.Lock()
	l.last = append([]models.Port(nil), ports...)
	l.mu.Unlock()

	if ports == nil {
		return execute(c, "spinner", MsgPortsLoading)
	}
	if len(ports) == 0 {
		return execute(c, "message", MsgPortsEmpty)
	}

	cards := make([]portCard, len(ports))
	for i, p := range ports {
		card := portCard{
			CardID:  cardID(i, p),
			Name:    p.Name,
			Lat:     "N/A",
			Lng:     "N/A",
			Country: orNA(p.Country),
			Status:  portStatusFor(p),
		}
		if card.Name == "" {
			card.Name = "Unknown Port"
		}
		if pos, ok := p.Position(); ok {
			card.Lat = formatCoord(pos.Lat)
			card.Lng = formatCoord(pos.Lng)
		}
		cards[i] = card
	}
	return execute(c, "port-list", cards)
}

// Select finds the card with the given data-port-id in the last rendered
// snapshot and passes its port to the callback.
func (l *PortList) Select(id string) bool {
	n, err := strconv.Atoi(id)
	if err != nil {
		return false
	}

	l.mu.RLock()
	var (
		found models.Port
		ok    bool
	)
	for i, p := range l.last {
		if cardID(i, p) == n {
			found, ok = p, true
			break
		}
	}
	l.mu.RUnlock()

	if !ok {
		return false
	}
	if l.onSelect != nil {
		l.onSelect(found)
	}
	return true
}

// Snapshot returns the ports from the last render.
func (l *PortList) Snapshot() []models.Port {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.Port(nil), l.last...)
}

type portDetail struct {
	DockedShips    int
	Capacity       int
	AvailableSlots int
	Waiting        string
	Status         portStatus
}

// PortDetail renders the statistics of a single port.
type PortDetail struct{}

func (PortDetail) Render(c Container, p *models.Port) error {
	if p == nil {
		return execute(c, "message", MsgPortDetailFailed)
	}
	return execute(c, "port-detail", portDetail{
		DockedShips:    p.DockedShips,
		Capacity:       p.Capacity,
		AvailableSlots: p.AvailableSlots,
		Waiting:        orNA(p.AvgWaitingTime),
		Status:         portStatusFor(*p),
	})
}
