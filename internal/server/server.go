package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tariff-backend/internal/analyses"
	"tariff-backend/internal/plans"
	"tariff-backend/internal/shared/config"
	"tariff-backend/internal/shared/metrics"
	"tariff-backend/internal/shared/server/middleware"
)

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(cfg config.Config, plansHandler *plans.Handler, analysesHandler *analyses.Handler) *gin.Engine {
	if cfg.Env == "production" || cfg.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", metrics.Handler())

	api := engine.Group("/v1")
	plansHandler.RegisterRoutes(api)
	analysesHandler.RegisterRoutes(api)

	return engine
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
