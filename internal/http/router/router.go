// Package router assembles the gin engine: shared middleware, health and
// metrics endpoints, then every module's routes.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	apphttp "callinsight_backend/internal/http"
	"callinsight_backend/platform/httpkit"
)

// New builds the engine for app.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()

	// Order matters: the span wraps everything, recovery sits inside it, and the
	// request id exists before anything logs.
	if app.Config.IsOTLPEnabled() {
		engine.Use(otelgin.Middleware(app.Config.GetServiceName()))
	}
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if app.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(app.Metrics))
	}

	v1 := engine.Group("/api/v1")
	limiter := httpkit.NewPerMinuteLimiter(app.Config.GetRateLimitPerMinute(), app.Logger)
	protected := v1.Group("")
	protected.Use(limiter.RateLimit(), httpkit.AuthRequired(app.Config))

	rc := &apphttp.RouterContext{
		Engine:    engine,
		V1:        v1,
		Protected: protected,
		Config:    app.Config,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("registered module routes", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID, "Retry-After"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	origins := cfg.GetCORSOrigins()
	if cfg.GetCORSAllowAll() || len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	} else {
		c.AllowOrigins = origins
	}
	return c
}
