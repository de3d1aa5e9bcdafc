// Package http assembles the gin route tree and the HTTP server.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MedReg-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MedReg-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	AnalysisHandler *handlers.AnalysisHandler
	HealthHandler   *handlers.HealthHandler

	Logger         logging.Logger
	MetricsHandler http.Handler
	Mode           string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Logger))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.AnalysisHandler != nil {
		cfg.AnalysisHandler.RegisterRoutes(api)
	}

	return r
}
