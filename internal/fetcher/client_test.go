package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	})}, opts...)

	c, err := New(baseURL, time.Second, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("/api", time.Second); err == nil {
		t.Error("expected error for relative base url")
	}
}

func TestFetchETA_EnvelopesDecodeIdentically(t *testing.T) {
	records := `[{"ship_name":"Aurora","port_from":"Hai Phong","port_to":"Da Nang","delay_hours":"2.5","latitude":16.1,"longitude":"108.2"}]`
	bodies := []string{
		records,
		`{"results":` + records + `}`,
		`{"data":` + records + `}`,
	}

	for _, body := range bodies {
		srv := serveJSON(t, body)
		c := newTestClient(t, srv.URL)

		got, err := c.FetchETA(context.Background())
		if err != nil {
			t.Fatalf("FetchETA(%s): %v", body, err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		e := got[0]
		if e.ShipName != "Aurora" || e.Delay() != 2.5 {
			t.Errorf("unexpected record %+v", e)
		}
		pos, ok := e.Position()
		if !ok || pos.Lat != 16.1 || pos.Lng != 108.2 {
			t.Errorf("unexpected position %v %v", pos, ok)
		}
	}
}

func TestFetch_CacheBusting(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	fixed := time.UnixMilli(1700000000123)
	c := newTestClient(t, srv.URL+"/", WithClock(func() time.Time { return fixed }))

	if _, err := c.FetchStormAlerts(context.Background()); err != nil {
		t.Fatalf("FetchStormAlerts: %v", err)
	}

	gotReq := <-reqs
	if gotReq.URL.Path != "/api/storm-alerts" {
		t.Errorf("path = %q", gotReq.URL.Path)
	}
	if ts := gotReq.URL.Query().Get("_t"); ts != "1700000000123" {
		t.Errorf("_t = %q", ts)
	}
	want := map[string]string{
		"Cache-Control": "no-cache, no-store, must-revalidate",
		"Pragma":        "no-cache",
		"Expires":       "0",
	}
	for k, v := range want {
		if got := gotReq.Header.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestFetch_NetworkFailureYieldsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	got, err := c.FetchETA(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %v", got)
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ports, err := c.FetchPorts(context.Background())
	if len(ports) != 0 || ports == nil {
		t.Errorf("expected empty list, got %v", ports)
	}
	var fe *Error
	if KindOf(err) != KindStatus {
		t.Fatalf("expected status error, got %v", err)
	}
	fe = err.(*Error)
	if fe.StatusCode != http.StatusInternalServerError {
		t.Errorf("status code = %d", fe.StatusCode)
	}
}

func TestFetch_DecodeError(t *testing.T) {
	srv := serveJSON(t, `not json`)
	c := newTestClient(t, srv.URL)

	got, err := c.FetchETA(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
	if KindOf(err) != KindDecode {
		t.Errorf("expected decode error for invalid json, got %v", err)
	}
}

func TestFetchETA_SkipsUndecodableRecords(t *testing.T) {
	srv := serveJSON(t, `[
		{"ship_name":"Good","latitude":10,"longitude":100},
		{"ship_name":"Bad","latitude":"N/A","longitude":"N/A"},
		{"ship_name":"Broken","delay_hours":"soon"},
		{"ship_name":42},
		{"ship_name":"Also Good","latitude":"11.5","longitude":"101"}
	]`)
	c := newTestClient(t, srv.URL)

	got, err := c.FetchETA(context.Background())
	if err != nil {
		t.Fatalf("FetchETA: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(got), got)
	}

	names := []string{got[0].ShipName, got[1].ShipName, got[2].ShipName}
	want := []string{"Good", "Bad", "Also Good"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, names[i], want[i])
		}
	}
	if pos, ok := got[0].Position(); !ok || pos.Lat != 10 || pos.Lng != 100 {
		t.Errorf("good record position = %v %v", pos, ok)
	}
	if got[1].Latitude != nil || got[1].Longitude != nil {
		t.Errorf("expected no coordinates for N/A record, got %v %v", got[1].Latitude, got[1].Longitude)
	}
	if _, ok := got[1].Position(); ok {
		t.Error("N/A record should have no position")
	}
}

func TestFetch_ShapeError(t *testing.T) {
	srv := serveJSON(t, `"maintenance"`)
	c := newTestClient(t, srv.URL)

	if _, err := c.FetchStormAlerts(context.Background()); KindOf(err) != KindShape {
		t.Errorf("expected shape error, got %v", err)
	}
}

func TestFetchList_ObjectWithoutRecordsIsShapeError(t *testing.T) {
	srv := serveJSON(t, `{"detail":"maintenance"}`)
	c := newTestClient(t, srv.URL)

	etas, err := c.FetchETA(context.Background())
	if KindOf(err) != KindShape {
		t.Errorf("FetchETA: expected shape error, got %v", err)
	}
	if etas == nil || len(etas) != 0 {
		t.Errorf("expected empty list, got %+v", etas)
	}

	ports, err := c.FetchPorts(context.Background())
	if KindOf(err) != KindShape || len(ports) != 0 {
		t.Errorf("FetchPorts: got %+v, %v", ports, err)
	}
}

func TestFetchShipETA_AcceptsBareObject(t *testing.T) {
	srv := serveJSON(t, `{"ship_name":"Solo","delay_hours":1}`)
	c := newTestClient(t, srv.URL)

	got, err := c.FetchShipETA(context.Background(), "Solo")
	if err != nil {
		t.Fatalf("FetchShipETA: %v", err)
	}
	if got.ShipName != "Solo" || got.Delay() != 1 {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestFetchPorts_NormalizesStatus(t *testing.T) {
	srv := serveJSON(t, `{"ports":[
		{"id":1,"name":"Hai Phong","status":"BẬN","location":{"latitude":20.86,"longitude":106.68}},
		{"id":2,"port_name":"Cai Mep","latitude":"10.53","longitude":"107.03"}
	]}`)
	c := newTestClient(t, srv.URL)

	ports, err := c.FetchPorts(context.Background())
	if err != nil {
		t.Fatalf("FetchPorts: %v", err)
	}
	if len(ports) != 2 {
		t.Fatalf("expected 2 ports, got %d", len(ports))
	}
	if ports[0].Status != models.PortStatusBusy {
		t.Errorf("status = %q", ports[0].Status)
	}
	if ports[1].Status != models.PortStatusStable || ports[1].Name != "Cai Mep" {
		t.Errorf("unexpected second port %+v", ports[1])
	}
}

func TestFetchShipETA_EscapesName(t *testing.T) {
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.EscapedPath()
		w.Write([]byte(`{"ship_name":"Blue Whale","delay_hours":0}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	e, err := c.FetchShipETA(context.Background(), "Blue Whale")
	if err != nil {
		t.Fatalf("FetchShipETA: %v", err)
	}
	if e.ShipName != "Blue Whale" {
		t.Errorf("ship = %q", e.ShipName)
	}
	if gotPath := <-paths; gotPath != "/api/eta/Blue%20Whale" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestFetchPort_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	p, err := c.FetchPort(context.Background(), 7)
	if p != nil || KindOf(err) != KindStatus {
		t.Errorf("expected nil port and status error, got %v %v", p, err)
	}
}

func TestWatchETA_ReschedulesAfterFailure(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1)%2 == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"ship_name":"A"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var mu sync.Mutex
	var failures, successes int
	task := c.WatchETA(10*time.Millisecond, func(records []models.ETA, err error) {
		mu.Lock()
		defer mu.Unlock()
		if records == nil {
			t.Error("onData received a nil list")
		}
		if err != nil {
			failures++
		} else {
			successes++
		}
	})

	task.Start(context.Background())
	time.Sleep(120 * time.Millisecond)
	task.Stop()

	mu.Lock()
	defer mu.Unlock()
	if failures == 0 || successes == 0 {
		t.Errorf("expected both failures and successes, got %d/%d", failures, successes)
	}
}
