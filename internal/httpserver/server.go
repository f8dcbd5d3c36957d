package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reintausend/rfs/internal/config"
	"github.com/reintausend/rfs/internal/handlers"
	"github.com/reintausend/rfs/internal/middleware"
	"github.com/reintausend/rfs/internal/store"
	"github.com/reintausend/rfs/internal/tracking"
)

// NewRouter wires public endpoints and the tracking API.
// Probes: /health, /ready
// Tracking: POST / (ingest), GET / (status, getTop), both also under /exec
func NewRouter(cfg config.Config, st store.Store, svc *tracking.Service, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterIngestRoutes(r, svc, log)
	handlers.RegisterQueryRoutes(r, svc, cfg.APIName, log)

	return r
}
