package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sla-monitor/internal/config"
	"sla-monitor/internal/logging"
	"sla-monitor/internal/notify"
	"sla-monitor/internal/sla"
)

func NewRouter(engine *sla.Engine, history History, hub *notify.Hub, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	h := NewHandler(engine, history, hub, logger, cfg)
	api := r.Group(cfg.API.BasePath)
	{
		api.POST("/monitor", h.TriggerMonitor)
		api.GET("/statistics", h.GetStatistics)
		api.GET("/rules", h.GetRules)
		api.PATCH("/rules/:id", h.UpdateRule)
		api.GET("/violations", h.GetViolations)
		api.GET("/ws", h.ServeWS)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
