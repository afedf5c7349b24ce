package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-maritime-dashboard/internal/models"
	"github.com/mr1hm/go-maritime-dashboard/internal/repository"
)

// Capacity figures are not tracked yet; ports report fixed placeholders.
const (
	placeholderCapacity    = 100
	placeholderWaitingTime = "N/A"
)

type Handler struct {
	repo repository.Repository
	now  func() time.Time
}

func NewHandler(repo repository.Repository) *Handler {
	return &Handler{
		repo: repo,
		now:  time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.root)
	r.GET("/health", h.health)

	r.GET("/api/eta", h.listETA)
	r.GET("/api/eta/:ship_name", h.getShipETA)
	r.GET("/api/ports", h.listPorts)
	r.GET("/api/ports/:id", h.getPort)
	r.GET("/api/storms", h.listStorms)
	r.GET("/api/storm-alerts", h.listStormAlerts)
	r.GET("/api/ships", h.listShips)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Shipping API is running"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listETA(c *gin.Context) {
	records, err := h.repo.ListETA(c.Request.Context())
	if err != nil {
		internalError(c, "failed to fetch eta", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) getShipETA(c *gin.Context) {
	name := c.Param("ship_name")
	record, err := h.repo.LatestETA(c.Request.Context(), name)
	if err != nil {
		internalError(c, "failed to fetch eta", err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ship not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) listPorts(c *gin.Context) {
	ports, err := h.repo.ListPorts(c.Request.Context())
	if err != nil {
		internalError(c, "failed to fetch ports", err)
		return
	}
	for i := range ports {
		withPlaceholders(&ports[i])
	}
	c.JSON(http.StatusOK, gin.H{"ports": ports})
}

func (h *Handler) getPort(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid port id"})
		return
	}

	port, err := h.repo.GetPort(c.Request.Context(), id)
	if err != nil {
		internalError(c, "failed to fetch port", err)
		return
	}
	if port == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "port not found"})
		return
	}
	withPlaceholders(port)
	c.JSON(http.StatusOK, port)
}

func withPlaceholders(p *models.Port) {
	p.DockedShips = 0
	p.Capacity = placeholderCapacity
	p.AvailableSlots = placeholderCapacity
	p.AvgWaitingTime = placeholderWaitingTime
}

func (h *Handler) listStorms(c *gin.Context) {
	storms, err := h.repo.ListStorms(c.Request.Context())
	if err != nil {
		internalError(c, "failed to fetch storms", err)
		return
	}
	c.JSON(http.StatusOK, storms)
}

func (h *Handler) listStormAlerts(c *gin.Context) {
	alerts, err := h.repo.ListStormAlerts(c.Request.Context())
	if err != nil {
		internalError(c, "failed to fetch storm alerts", err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) listShips(c *gin.Context) {
	ships, err := h.repo.ListShips(c.Request.Context(), h.now())
	if err != nil {
		internalError(c, "failed to fetch ships", err)
		return
	}
	c.JSON(http.StatusOK, ships)
}

func internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
