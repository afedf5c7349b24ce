package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mr1hm/go-maritime-dashboard/internal/dashboard"
	"github.com/mr1hm/go-maritime-dashboard/internal/geo"
	"github.com/mr1hm/go-maritime-dashboard/internal/live"
	"github.com/mr1hm/go-maritime-dashboard/internal/logging"
	"github.com/mr1hm/go-maritime-dashboard/internal/mapview"
	"github.com/mr1hm/go-maritime-dashboard/internal/render"
)

const DefaultTitle = "Bảng điều khiển hàng hải"

// Server exposes a dashboard to browsers: the page, the map snapshot, panel
// fragments, user interactions and a websocket of live updates.
type Server struct {
	dash     *dashboard.Dashboard
	panels   map[string]*render.Panel
	hub      *live.Broadcaster
	title    string
	upgrader websocket.Upgrader
	now      func() time.Time
	log      *slog.Logger
}

// NewServer forwards every panel replacement to hub. hub may be nil for a
// static render.
func NewServer(dash *dashboard.Dashboard, panels []*render.Panel, hub *live.Broadcaster) *Server {
	s := &Server{
		dash:   dash,
		panels: make(map[string]*render.Panel, len(panels)),
		hub:    hub,
		title:  DefaultTitle,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		now: time.Now,
		log: logging.Component("web"),
	}
	for _, p := range panels {
		s.panels[p.Name()] = p
		if hub != nil {
			p.OnReplace(func(name string, html template.HTML) {
				hub.Publish(live.Update{Kind: live.KindPanel, Panel: name, HTML: string(html)})
			})
		}
	}
	return s
}

// RegisterRoutes mounts the dashboard. Interaction routes are wrapped in
// interact, typically a per-client rate limiter.
func (s *Server) RegisterRoutes(r *gin.Engine, interact ...gin.HandlerFunc) {
	r.GET("/", s.index)
	r.GET("/health", s.health)
	r.GET("/api/map", s.mapState)
	r.GET("/panels/:name", s.panel)

	actions := r.Group("/api", interact...)
	actions.POST("/ports/:id/select", s.selectPort)
	actions.POST("/ships/:name/focus", s.focusShip)
	actions.POST("/ships/:name/popup", s.openPopup)
	actions.DELETE("/popup", s.closePopup)
	actions.PUT("/view", s.setView)

	if s.hub != nil {
		r.GET("/ws", s.serveWS)
	}
}

// Page collects the current panels and map for a full page render.
func (s *Server) Page(interactive bool) PageData {
	panels := make(map[string]template.HTML, len(s.panels))
	for name, p := range s.panels {
		panels[name] = p.HTML()
	}
	m := s.dash.Map()
	return PageData{
		Title:     s.title,
		Panels:    panels,
		Map:       m.GeoJSON(),
		View:      m.View(),
		Live:      interactive,
		Generated: s.now(),
	}
}

func (s *Server) index(c *gin.Context) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, s.Page(true)); err != nil {
		s.log.Error("error rendering page", "error", err)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) health(c *gin.Context) {
	status, state := http.StatusOK, "ok"
	if !s.dash.Healthy() {
		status, state = http.StatusServiceUnavailable, "degraded"
	}
	resp := gin.H{"status": state, "streams": s.dash.Status()}
	if s.hub != nil {
		resp["subscribers"] = s.hub.SubscriberCount()
	}
	c.JSON(status, resp)
}

type mapResponse struct {
	mapview.FeatureCollection
	View mapview.Viewport `json:"view"`
}

func (s *Server) mapState(c *gin.Context) {
	m := s.dash.Map()
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, mapResponse{FeatureCollection: m.GeoJSON(), View: m.View()})
}

func (s *Server) panel(c *gin.Context) {
	name := c.Param("name")
	if name == dashboard.StreamETA && c.Query("q") != "" {
		tmp := render.NewPanel(name)
		if err := s.dash.RenderETA(tmp, c.Query("q")); err != nil {
			s.log.Error("error rendering eta panel", "error", err)
			c.String(http.StatusInternalServerError, "failed to render panel")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(tmp.HTML()))
		return
	}

	p, ok := s.panels[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "panel not found"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(p.HTML()))
}

func (s *Server) selectPort(c *gin.Context) {
	if !s.dash.SelectPort(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "port not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "selected"})
}

func (s *Server) focusShip(c *gin.Context) {
	if !s.dash.FocusShip(c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ship not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "focused"})
}

func (s *Server) openPopup(c *gin.Context) {
	if err := s.dash.Map().OpenPopup(c.Param("name")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	s.publishMap()
	c.JSON(http.StatusOK, gin.H{"status": "open"})
}

func (s *Server) closePopup(c *gin.Context) {
	s.dash.Map().ClosePopup()
	s.publishMap()
	c.Status(http.StatusNoContent)
}

type viewRequest struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Zoom   float64 `json:"zoom"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

func (s *Server) setView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid view"})
		return
	}

	m := s.dash.Map()
	if req.Width > 0 || req.Height > 0 {
		if err := m.Resize(req.Width, req.Height); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := m.SetView(geo.LatLng{Lat: req.Lat, Lng: req.Lng}, req.Zoom); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The popup anchor may have moved with the view.
	if m.State().OpenPopup != "" {
		s.publishMap()
	}
	c.JSON(http.StatusOK, m.View())
}

func (s *Server) publishMap() {
	if s.hub != nil {
		s.hub.Publish(live.Update{Kind: live.KindMap})
	}
}
