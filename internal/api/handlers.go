package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"sla-monitor/internal/config"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/models"
	"sla-monitor/internal/notify"
	"sla-monitor/internal/sla"
)

// History is the read side of the violation store the API exposes.
// *db.DB satisfies it.
type History interface {
	GetViolations(ctx context.Context, limit, offset int) ([]models.Violation, error)
	GetViolationStats(ctx context.Context, windowDays int) ([]models.ViolationStats, error)
}

type Handler struct {
	engine  *sla.Engine
	history History
	hub     *notify.Hub
	logger  *logging.Logger
	config  config.Config
}

func NewHandler(engine *sla.Engine, history History, hub *notify.Hub, logger *logging.Logger, cfg config.Config) *Handler {
	return &Handler{engine: engine, history: history, hub: hub, logger: logger, config: cfg}
}

// TriggerMonitor runs one monitoring cycle and returns its summary.
func (h *Handler) TriggerMonitor(c *gin.Context) {
	result, err := h.engine.RunCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, sla.ErrCycleInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "monitoring cycle already in progress"})
			return
		}
		h.logger.Errorf("Monitoring cycle failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "monitoring cycle failed",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStatistics returns the per-day violation rollup for a trailing window.
func (h *Handler) GetStatistics(c *gin.Context) {
	days := h.config.Monitor.StatsWindowDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer between 1 and 365"})
			return
		}
		days = parsed
	}

	stats, err := h.history.GetViolationStats(c.Request.Context(), days)
	if err != nil {
		h.logger.Errorf("Get violation stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to load statistics",
			"details": err.Error(),
		})
		return
	}
	if stats == nil {
		stats = []models.ViolationStats{}
	}
	c.JSON(http.StatusOK, gin.H{"window_days": days, "statistics": stats})
}

// GetRules lists the rule registry, disabled rules included.
func (h *Handler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.engine.Registry().List()})
}

// UpdateRule enables or disables one rule.
func (h *Handler) UpdateRule(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.engine.Registry().SetEnabled(id, *req.Enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	h.logger.Infof("Rule %s enabled=%v", id, *req.Enabled)

	rule, _ := h.engine.Registry().Get(id)
	c.JSON(http.StatusOK, rule)
}

// GetViolations returns paginated violation history, newest first.
func (h *Handler) GetViolations(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 200"})
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
			return
		}
		offset = parsed
	}

	violations, err := h.history.GetViolations(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Errorf("Get violations failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to load violations",
			"details": err.Error(),
		})
		return
	}
	if violations == nil {
		violations = []models.Violation{}
	}
	c.JSON(http.StatusOK, gin.H{"limit": limit, "offset": offset, "violations": violations})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and subscribes it to the live feed.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(conn)

	// Reader loop only watches for close; the hub owns all writes.
	go func() {
		defer h.hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
