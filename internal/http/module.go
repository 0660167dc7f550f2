package http

import (
	"callinsight_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a feature area that mounts its own routes. The router only knows
// this interface, never the endpoints behind it.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what a module receives when mounting routes.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without auth or rate limiting.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind the rate limiter and bearer-token auth.
	Protected *gin.RouterGroup
	Config    config.JWTConfig
}
