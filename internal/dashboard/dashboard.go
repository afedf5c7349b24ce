package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/live"
	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/mapview"
	"github.com/mr1hm/go-maritime-dashboard/internal/models"
	"github.com/mr1hm/go-maritime-dashboard/internal/render"
	"github.com/mr1hm/go-maritime-dashboard/internal/worker"
)

// Stream names used for status reporting and live updates.
const (
	StreamETA        = "eta"
	StreamPorts      = "ports"
	StreamStorms     = "storms"
	StreamPortDetail = "port-detail"
)

const (
	DefaultETAInterval     = 5 * time.Second
	DefaultRefreshInterval = 5 * time.Minute
)

// Source is where the dashboard reads its data from.
type Source interface {
	FetchETA(ctx context.Context) ([]models.ETA, error)
	FetchPorts(ctx context.Context) ([]models.Port, error)
	FetchPort(ctx context.Context, id int) (*models.Port, error)
	FetchStormAlerts(ctx context.Context) ([]models.StormAlert, error)
	WatchETA(delay time.Duration, onData func([]models.ETA, error)) *worker.Task
}

// Reporter receives the outcome of every refresh.
type Reporter interface {
	Report(stream string, err error)
}

type Notifier interface {
	NotifyStorms(alerts []models.StormAlert) int
	NotifyDelays(records []models.ETA) int
}

type Publisher interface {
	Publish(u live.Update)
}

// Panels are the containers each renderer writes into.
type Panels struct {
	ETA        render.Container
	Ports      render.Container
	Alerts     render.Container
	PortDetail render.Container
}

type Deps struct {
	Source Source
	Map    *mapview.Manager
	Panels Panels

	// Optional.
	Reporter Reporter
	Notifier Notifier
	Live     Publisher

	ETAInterval     time.Duration
	RefreshInterval time.Duration
	AutoRefresh     bool
}

// StreamStatus is the latest known state of one data stream.
type StreamStatus struct {
	Stream      string    `json:"stream"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Error       string    `json:"error,omitempty"`
	Count       int       `json:"count"`
	Healthy     bool      `json:"healthy"`
}

// Dashboard sequences the data streams: storms, then ports, then ETA, so
// that ship bearings can resolve destination ports. Every stage is its own
// failure boundary.
type Dashboard struct {
	deps Deps

	etaTable render.ETATable
	portList *render.PortList
	detail   render.PortDetail
	alerts   render.AlertList

	mu      sync.RWMutex
	runCtx  context.Context
	etaTask *worker.Task
	refresh *worker.Task
	lastETA []models.ETA
	status  map[string]*StreamStatus

	now func() time.Time
	log *slog.Logger
}

func New(deps Deps) *Dashboard {
	if deps.ETAInterval <= 0 {
		deps.ETAInterval = DefaultETAInterval
	}
	if deps.RefreshInterval <= 0 {
		deps.RefreshInterval = DefaultRefreshInterval
	}

	d := &Dashboard{
		deps:   deps,
		runCtx: context.Background(),
		status: make(map[string]*StreamStatus),
		now:    time.Now,
		log:    logging.Component("dashboard"),
	}
	d.portList = render.NewPortList(d.onPortSelected)
	return d
}

// Start renders loading states, runs the initial storms and ports loads,
// then starts the repeating schedules. It returns once the first ports load
// has finished.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()

	d.renderLoading()

	d.LoadStorms(ctx)
	d.LoadPorts(ctx)

	refresh := worker.NewTask("ports-storms", d.deps.RefreshInterval, func(ctx context.Context) {
		d.LoadStorms(ctx)
		d.LoadPorts(ctx)
	})
	refresh.StartDeferred(ctx)

	var etaTask *worker.Task
	if d.deps.AutoRefresh {
		etaTask = d.deps.Source.WatchETA(d.deps.ETAInterval, d.applyETA)
		etaTask.Start(ctx)
	} else {
		d.LoadETA(ctx)
	}

	d.mu.Lock()
	d.refresh = refresh
	d.etaTask = etaTask
	d.mu.Unlock()

	d.log.Info("dashboard started",
		"auto_refresh", d.deps.AutoRefresh,
		"eta_interval", d.deps.ETAInterval,
		"refresh_interval", d.deps.RefreshInterval,
	)
}

// Stop cancels both schedules and waits for in-flight refreshes.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	etaTask, refresh := d.etaTask, d.refresh
	d.etaTask, d.refresh = nil, nil
	d.mu.Unlock()

	if etaTask != nil {
		etaTask.Stop()
	}
	if refresh != nil {
		refresh.Stop()
	}
	d.log.Info("dashboard stopped")
}

func (d *Dashboard) renderLoading() {
	d.renderErr(StreamETA, d.etaTable.Render(d.deps.Panels.ETA, nil))
	d.renderErr(StreamPorts, d.portList.Render(d.deps.Panels.Ports, nil))
	d.renderErr(StreamStorms, d.alerts.Render(d.deps.Panels.Alerts, nil))
}

// LoadStorms fetches storm alerts, renders the alert list and redraws the
// storm layers.
func (d *Dashboard) LoadStorms(ctx context.Context) {
	alerts, err := d.deps.Source.FetchStormAlerts(ctx)
	if ctx.Err() != nil {
		return
	}
	d.report(StreamStorms, len(alerts), err)

	d.renderErr(StreamStorms, d.alerts.Render(d.deps.Panels.Alerts, alerts))
	if _, mapErr := d.deps.Map.SetStormAlerts(alerts); mapErr != nil {
		d.log.Warn("error drawing storms", "error", mapErr)
	}

	if err == nil && d.deps.Notifier != nil {
		d.deps.Notifier.NotifyStorms(alerts)
	}
	d.publishMap(StreamStorms, err)
}

// LoadPorts fetches ports, renders the port list and rebuilds the port
// markers along with the destination lookup.
func (d *Dashboard) LoadPorts(ctx context.Context) {
	ports, err := d.deps.Source.FetchPorts(ctx)
	if ctx.Err() != nil {
		return
	}
	d.report(StreamPorts, len(ports), err)

	d.renderErr(StreamPorts, d.portList.Render(d.deps.Panels.Ports, ports))
	placed, mapErr := d.deps.Map.AddPorts(ports)
	if mapErr != nil {
		d.log.Warn("error drawing ports", "error", mapErr)
	} else if placed < len(ports) {
		d.log.Debug("ports skipped on map", "skipped", len(ports)-placed)
	}
	d.publishMap(StreamPorts, err)
}

// LoadETA runs one ETA refresh outside the repeating schedule.
func (d *Dashboard) LoadETA(ctx context.Context) {
	records, err := d.deps.Source.FetchETA(ctx)
	if ctx.Err() != nil {
		return
	}
	d.applyETA(records, err)
}

// applyETA places ship markers and renders the ETA table. Ships missing from
// a successful snapshot lose their marker; a failed fetch leaves markers as
// they were.
func (d *Dashboard) applyETA(records []models.ETA, err error) {
	d.report(StreamETA, len(records), err)

	if err == nil {
		d.placeShips(records)
	}

	d.mu.Lock()
	d.lastETA = records
	d.mu.Unlock()

	d.renderErr(StreamETA, d.etaTable.Render(d.deps.Panels.ETA, records))

	if err == nil && d.deps.Notifier != nil {
		d.deps.Notifier.NotifyDelays(records)
	}
	d.publishMap(StreamETA, err)
}

func (d *Dashboard) placeShips(records []models.ETA) {
	keys := make([]string, 0, len(records))
	rejected := 0
	for _, e := range records {
		if err := d.deps.Map.AddShipMarker(e); err != nil {
			if errors.Is(err, mapview.ErrNoMap) {
				d.log.Warn("error placing ships", "error", err)
				return
			}
			rejected++
			continue
		}
		keys = append(keys, e.ShipName)
	}
	d.deps.Map.RetainShips(keys)
	if rejected > 0 {
		d.log.Debug("ship markers rejected", "count", rejected)
	}
}

// SelectPort resolves a port card id from the last ports render. It reports
// false when no card matches.
func (d *Dashboard) SelectPort(cardID string) bool {
	return d.portList.Select(cardID)
}

// onPortSelected centers the map on the port at the focus zoom and loads its
// details.
func (d *Dashboard) onPortSelected(p models.Port) {
	if pos, ok := p.Position(); ok && pos.Valid() {
		if err := d.deps.Map.CenterOn(pos.Lat, pos.Lng); err != nil {
			d.log.Warn("error centering on port", "port", p.Name, "error", err)
		}
	}

	d.mu.RLock()
	ctx := d.runCtx
	d.mu.RUnlock()

	detail := &p
	if p.ID > 0 {
		var err error
		detail, err = d.deps.Source.FetchPort(ctx, p.ID)
		d.report(StreamPortDetail, 1, err)
		if err != nil {
			detail = nil
		}
	}
	d.renderErr(StreamPortDetail, d.detail.Render(d.deps.Panels.PortDetail, detail))
	d.publishMap(StreamPortDetail, nil)
}

// FocusShip centers on a ship and opens its popup.
func (d *Dashboard) FocusShip(name string) bool {
	if !d.deps.Map.FocusShip(name) {
		return false
	}
	d.publishMap(StreamETA, nil)
	return true
}

// ETA returns the records of the latest ETA refresh.
func (d *Dashboard) ETA() []models.ETA {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.ETA(nil), d.lastETA...)
}

// RenderETA renders the latest ETA records matching query into c.
func (d *Dashboard) RenderETA(c render.Container, query string) error {
	d.mu.RLock()
	records := d.lastETA
	d.mu.RUnlock()

	if query != "" && records != nil {
		records = render.FilterETA(records, query)
	}
	return d.etaTable.Render(c, records)
}

// Ports returns the ports of the latest ports refresh.
func (d *Dashboard) Ports() []models.Port {
	return d.portList.Snapshot()
}

// Status lists every stream seen so far, by name.
func (d *Dashboard) Status() []StreamStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]StreamStatus, 0, len(d.status))
	for _, s := range d.status {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stream < out[j].Stream })
	return out
}

// Healthy is true when every stream's latest refresh succeeded.
func (d *Dashboard) Healthy() bool {
	for _, s := range d.Status() {
		if !s.Healthy {
			return false
		}
	}
	return true
}

func (d *Dashboard) Map() *mapview.Manager { return d.deps.Map }

func (d *Dashboard) report(stream string, count int, err error) {
	now := d.now()

	d.mu.Lock()
	s, ok := d.status[stream]
	if !ok {
		s = &StreamStatus{Stream: stream}
		d.status[stream] = s
	}
	s.LastRun = now
	s.Count = count
	s.Healthy = err == nil
	if err == nil {
		s.LastSuccess = now
		s.Error = ""
	} else {
		s.Error = err.Error()
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("refresh failed", "stream", stream, "error", err)
	} else {
		d.log.Debug("refresh complete", "stream", stream, "count", count)
	}
	if d.deps.Reporter != nil {
		d.deps.Reporter.Report(stream, err)
	}
}

func (d *Dashboard) renderErr(stream string, err error) {
	if err != nil {
		d.log.Error("error rendering panel", "stream", stream, "error", err)
	}
}

func (d *Dashboard) publishMap(stream string, err error) {
	if d.deps.Live == nil {
		return
	}
	u := live.Update{Kind: live.KindMap, Stream: stream}
	if err != nil {
		u.Kind = live.KindStatus
		u.Error = err.Error()
	}
	d.deps.Live.Publish(u)
}
