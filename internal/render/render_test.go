package render

import (
	"html/template"
	"strings"
	"sync"
	"testing"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

func eta(name string, delay float64, status string) models.ETA {
	return models.ETA{
		ShipName:    name,
		PortFrom:    "Hai Phong",
		PortTo:      "Da Nang",
		DelayHours:  models.Number(delay),
		Status:      status,
		ETAExpected: "2024-09-15T08:30:00",
		Latitude:    models.NewNumber(16.05),
		Longitude:   models.NewNumber(108.2),
	}
}

func TestRenderers_EmptyAndLoadingMessages(t *testing.T) {
	cases := []struct {
		name   string
		render func(c Container) error
		want   string
	}{
		{"eta nil", func(c Container) error { return ETATable{}.Render(c, nil) }, MsgETALoading},
		{"eta empty", func(c Container) error { return ETATable{}.Render(c, []models.ETA{}) }, MsgETAEmpty},
		{"ports nil", func(c Container) error { return NewPortList(nil).Render(c, nil) }, MsgPortsLoading},
		{"ports empty", func(c Container) error { return NewPortList(nil).Render(c, []models.Port{}) }, MsgPortsEmpty},
		{"alerts nil", func(c Container) error { return AlertList{}.Render(c, nil) }, MsgAlertsLoading},
		{"alerts empty", func(c Container) error { return AlertList{}.Render(c, []models.StormAlert{}) }, MsgAlertsEmpty},
		{"port detail nil", func(c Container) error { return PortDetail{}.Render(c, nil) }, MsgPortDetailFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPanel("test")
			if err := tc.render(p); err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(string(p.HTML()), tc.want) {
				t.Errorf("got %q, want message %q", p.HTML(), tc.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		status string
		delay  float64
		level  string
		text   string
	}{
		{"Trễ", 0, "danger", "Trễ"},
		{"Trễ", 6, "danger", "Trễ"},
		{"active", 0, "normal", "Bình thường"},
		{"warning", 2, "warning", "Cảnh báo"},
		{"", 5, "warning", "Cảnh báo"},
	}
	for _, tc := range cases {
		got := StatusFor(eta("S", tc.delay, tc.status))
		if got.Level != tc.level || got.Text != tc.text {
			t.Errorf("StatusFor(%q, %v) = %+v", tc.status, tc.delay, got)
		}
	}
}

func TestDelayText(t *testing.T) {
	if DelayText(0) != "On time" || DelayText(-1) != "On time" {
		t.Error("expected On time for non-positive delay")
	}
	if got := DelayText(2.5); got != "+2.5h" {
		t.Errorf("DelayText(2.5) = %q", got)
	}
}

func TestETATable_Rows(t *testing.T) {
	noPos := eta("Ghost", 0, "")
	noPos.Latitude, noPos.Longitude = nil, nil
	noPos.ETAExpected = ""

	p := NewPanel("eta")
	if err := (ETATable{}).Render(p, []models.ETA{eta("Aurora", 3, "Trễ"), noPos}); err != nil {
		t.Fatal(err)
	}
	html := string(p.HTML())
	for _, want := range []string{
		"Aurora", "Hai Phong", "16.0500°N", "108.2000°E", "15/09/2024 08:30", "+3h",
		`data-level="danger"`, "Ghost", "N/A", "On time", "Bình thường",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestETATable_EscapesNames(t *testing.T) {
	p := NewPanel("eta")
	if err := (ETATable{}).Render(p, []models.ETA{eta("<script>x</script>", 0, "")}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(p.HTML()), "<script>") {
		t.Error("ship name was not escaped")
	}
}

func TestFilterETA(t *testing.T) {
	records := []models.ETA{eta("Aurora", 0, ""), eta("Blue Whale", 5, "Trễ"), eta("Cobalt", 2, "")}

	if got := FilterETA(records, ""); len(got) != 3 {
		t.Errorf("empty query should keep all, got %d", len(got))
	}
	got := FilterETA(records, "WHALE")
	if len(got) != 1 || got[0].ShipName != "Blue Whale" {
		t.Errorf("unexpected filter result %+v", got)
	}
	if got := FilterETA(records, "cảnh báo"); len(got) != 1 || got[0].ShipName != "Cobalt" {
		t.Errorf("status text should be searchable, got %+v", got)
	}
	if got := FilterETA(records, "nothing matches"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func port(id int, name, status string) models.Port {
	return models.Port{
		ID:       id,
		Name:     name,
		Country:  "Vietnam",
		Status:   status,
		Location: models.Location{Latitude: models.NewNumber(20.86), Longitude: models.NewNumber(106.68)},
	}
}

func TestPortList_RenderAndSelect(t *testing.T) {
	var selected []models.Port
	list := NewPortList(func(p models.Port) { selected = append(selected, p) })

	if list.Select("1") {
		t.Error("select before render should fail")
	}

	ports := []models.Port{
		port(0, "Unnumbered", "bận"),
		port(7, "Hai Phong", ""),
		port(9, "Cai Mep", "quá tải"),
	}
	p := NewPanel("ports")
	if err := list.Render(p, ports); err != nil {
		t.Fatal(err)
	}

	html := string(p.HTML())
	for _, want := range []string{`data-port-id="0"`, `data-port-id="7"`, `data-port-id="9"`, "Bận", "Ổn định", "Quá tải", "20.8600°N, 106.6800°E"} {
		if !strings.Contains(html, want) {
			t.Errorf("port list missing %q", want)
		}
	}

	if !list.Select("7") || !list.Select("0") {
		t.Fatal("expected selections to succeed")
	}
	if list.Select("42") || list.Select("abc") {
		t.Error("unknown ids should not select")
	}
	if len(selected) != 2 || selected[0].Name != "Hai Phong" || selected[1].Name != "Unnumbered" {
		t.Errorf("unexpected selections %+v", selected)
	}
}

func TestPortDetail(t *testing.T) {
	pt := port(1, "Hai Phong", "bận")
	pt.DockedShips = 12
	pt.Capacity = 85
	pt.AvailableSlots = 3

	p := NewPanel("detail")
	if err := (PortDetail{}).Render(p, &pt); err != nil {
		t.Fatal(err)
	}
	html := string(p.HTML())
	for _, want := range []string{">12<", "85%", "(3 chỗ trống)", "N/A", "Bận"} {
		if !strings.Contains(html, want) {
			t.Errorf("detail missing %q", want)
		}
	}
}

func TestAlertList(t *testing.T) {
	p := NewPanel("alerts")
	err := (AlertList{}).Render(p, []models.StormAlert{
		{Message: "Yagi", Status: models.StormSuper, Latitude: models.NewNumber(18.5), Longitude: models.NewNumber(112.25)},
		{Message: "Depression 5", Status: models.StormDepression, Latitude: models.NewNumber(12), Longitude: models.NewNumber(110)},
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(p.HTML())
	for _, want := range []string{"Yagi", "Siêu bão", "bg-red-100", "18.5000°N, 112.2500°E", "Áp thấp nhiệt đới", "bg-blue-100"} {
		if !strings.Contains(html, want) {
			t.Errorf("alerts missing %q", want)
		}
	}
	if n := strings.Count(html, `class="alert-item"`); n != 2 {
		t.Errorf("expected 2 items, got %d", n)
	}
}

func TestAlertList_MissingPosition(t *testing.T) {
	p := NewPanel("alerts")
	if err := (AlertList{}).Render(p, []models.StormAlert{{Message: "Drifting", Status: models.StormTyphoon}}); err != nil {
		t.Fatal(err)
	}
	html := string(p.HTML())
	if !strings.Contains(html, "Drifting") || !strings.Contains(html, "N/A") {
		t.Errorf("expected alert with N/A position, got %s", html)
	}
	if strings.Contains(html, "°N") {
		t.Errorf("expected no coordinates, got %s", html)
	}
}

func TestPanel_ReplaceNotifiesListeners(t *testing.T) {
	p := NewPanel("eta")

	var mu sync.Mutex
	var got []string
	p.OnReplace(func(name string, html template.HTML) {
		mu.Lock()
		got = append(got, name+":"+string(html))
		mu.Unlock()
	})

	p.Replace("<b>one</b>")
	p.Replace("<b>two</b>")

	if p.Version() != 2 || p.HTML() != "<b>two</b>" {
		t.Errorf("version %d html %s", p.Version(), p.HTML())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[1] != "eta:<b>two</b>" {
		t.Errorf("listeners saw %v", got)
	}
}
