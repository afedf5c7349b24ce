package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/mr1hm/go-maritime-dashboard/internal/mapview"
)

// PageData is everything the dashboard page needs for its first paint.
type PageData struct {
	Title     string
	Panels    map[string]template.HTML
	Map       mapview.FeatureCollection
	View      mapview.Viewport
	Live      bool
	Generated time.Time
}

func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"toJSON": toJSON,
}).Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdn.tailwindcss.com"></script>
<style>
  body { background: #0f172a; color: #e2e8f0; font-family: Arial, sans-serif; }
  #map { height: 560px; border-radius: 8px; }
  .ship-marker, .port-marker, .storm-marker { background: transparent; border: none; }
  .panel { background: #1e293b; border-radius: 8px; padding: 16px; }
  .alert-item { border-bottom: 1px solid #334155; padding: 8px 0; }
  .alert-icon { width: 32px; height: 32px; border-radius: 9999px; display: flex; align-items: center; justify-content: center; }
  .port-card { cursor: pointer; }
  .generated { font-size: 0.8em; color: #64748b; }
</style>
</head>
<body class="p-4">
<h1 class="text-2xl font-bold mb-4">{{.Title}}</h1>
<div class="grid grid-cols-3 gap-4">
  <div class="col-span-2"><div id="map"></div></div>
  <div class="space-y-4">
    <div class="panel"><h2 class="font-bold mb-2">⚠️ Cảnh báo bão</h2><div id="panel-alerts">{{index .Panels "alerts"}}</div></div>
    <div class="panel" id="panel-port-detail">{{index .Panels "port-detail"}}</div>
  </div>
</div>
<div class="grid grid-cols-3 gap-4 mt-4">
  <div class="col-span-2 panel">
    <div class="flex justify-between mb-2"><h2 class="font-bold">⏱️ Thông tin ETA</h2>
    {{if .Live}}<input id="eta-search" class="text-black px-2 rounded" placeholder="Tìm kiếm tàu..."/>{{end}}</div>
    <div id="panel-eta">{{index .Panels "eta"}}</div>
  </div>
  <div class="panel"><h2 class="font-bold mb-2">⚓ Cảng biển</h2><div id="panel-ports">{{index .Panels "ports"}}</div></div>
</div>
<p class="generated">Cập nhật: {{.Generated.Format "02/01/2006 15:04:05"}}</p>
<script>
(function() {
  const live = {{.Live}};
  const initialView = {{toJSON .View}};
  let features = {{toJSON .Map}};

  const map = L.map('map').setView([initialView.center.lat, initialView.center.lng], initialView.zoom);
  L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
    attribution: '&copy; OpenStreetMap contributors', maxZoom: 19
  }).addTo(map);
  const layers = L.layerGroup().addTo(map);

  function post(url, method, body) {
    return fetch(url, {method: method || 'POST', headers: {'Content-Type': 'application/json'}, body: body ? JSON.stringify(body) : undefined});
  }

  function draw(fc) {
    layers.clearLayers();
    fc.features.forEach(function(f) {
      const p = f.properties;
      const ll = [f.geometry.coordinates[1], f.geometry.coordinates[0]];
      switch (p.layer) {
      case 'ship': {
        const m = L.marker(ll, {icon: L.divIcon({className: 'ship-marker', html: p.icon, iconSize: [24, 24], iconAnchor: [12, 12]})});
        m.bindPopup(p.popup, {maxWidth: 320});
        if (live) m.on('click', function() { post('/api/ships/' + encodeURIComponent(p.key) + '/focus'); });
        m.addTo(layers);
        if (p.popup_open) {
          L.popup({maxWidth: 320}).setLatLng([p.popup_anchor[1], p.popup_anchor[0]]).setContent(p.popup).openOn(map);
        }
        break;
      }
      case 'port':
        L.marker(ll, {icon: L.divIcon({className: 'port-marker', html: p.icon, iconSize: [20, 20]})}).bindPopup(p.popup).addTo(layers);
        break;
      case 'storm-center':
        L.marker(ll, {icon: L.divIcon({className: 'storm-marker', html: p.icon, iconSize: [30, 30]})}).bindPopup(p.popup).addTo(layers);
        break;
      default:
        L.circle(ll, {radius: p.radius_m, color: p.color, fillColor: p.fill_color, fillOpacity: 0.15, dashArray: p.dashed ? '5, 10' : null}).addTo(layers);
      }
    });
  }
  draw(features);

  if (!live) return;

  function refreshMap() {
    fetch('/api/map').then(function(r) { return r.json(); }).then(function(fc) {
      const v = fc.view;
      const c = map.getCenter();
      if (v && (v.zoom !== map.getZoom() || Math.abs(v.center.lat - c.lat) > 1e-6 || Math.abs(v.center.lng - c.lng) > 1e-6)) {
        map.setView([v.center.lat, v.center.lng], v.zoom);
      }
      draw(fc);
    });
  }

  function reportView() {
    const c = map.getCenter(), s = map.getSize();
    post('/api/view', 'PUT', {lat: c.lat, lng: c.lng, zoom: map.getZoom(), width: s.x, height: s.y});
  }
  map.on('moveend', reportView);
  map.on('resize', reportView);
  reportView();

  document.getElementById('panel-ports').addEventListener('click', function(ev) {
    const card = ev.target.closest('[data-port-id]');
    if (card) post('/api/ports/' + card.dataset.portId + '/select');
  });
  document.getElementById('panel-eta').addEventListener('click', function(ev) {
    const row = ev.target.closest('[data-ship]');
    if (row) post('/api/ships/' + encodeURIComponent(row.dataset.ship) + '/focus');
  });

  const search = document.getElementById('eta-search');
  function loadETA() {
    fetch('/panels/eta?q=' + encodeURIComponent(search.value)).then(function(r) { return r.text(); }).then(function(html) {
      document.getElementById('panel-eta').innerHTML = html;
    });
  }
  search.addEventListener('input', loadETA);

  function connect() {
    const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    ws.onmessage = function(ev) {
      const u = JSON.parse(ev.data);
      if (u.kind === 'panel') {
        if (u.panel === 'eta' && search.value) { loadETA(); return; }
        const el = document.getElementById('panel-' + u.panel);
        if (el) el.innerHTML = u.html;
      } else if (u.kind === 'map') {
        refreshMap();
      } else if (u.kind === 'status' && u.error) {
        console.error('refresh failed', u.stream, u.error);
      }
    };
    ws.onclose = function() { setTimeout(connect, 5000); };
  }
  connect();
})();
</script>
</body>
</html>`))

// RenderPage writes the full dashboard page.
func RenderPage(w io.Writer, data PageData) error {
	return pageTemplate.Execute(w, data)
}

// WriteStatic renders a self-contained page to path. The file is written
// next to path first and renamed, so readers never see a partial page.
func WriteStatic(path string, data PageData) error {
	var buf bytes.Buffer
	if err := RenderPage(&buf, data); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write tmp failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}
