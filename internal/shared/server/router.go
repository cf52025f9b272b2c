package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docintel-backend/internal/services/health"
	"docintel-backend/internal/shared/config"
	"docintel-backend/internal/shared/metrics"
	"docintel-backend/internal/shared/server/middleware"
	"docintel-backend/internal/shared/server/respond"
)

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers the router exposes.
type RouterDeps struct {
	Config          config.Config
	ClassifyHandler RouteRegistrar
	RunsHandler     RouteRegistrar
	DocumentHandler RouteRegistrar
}

const runStatusGroup = "RUN_STATUS"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Registered before the middleware chain so scrapes skip auth.
	r.GET("/metrics", metrics.Handler())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				// Status polls are cheap but chatty; everything else is
				// left unthrottled.
				runStatusGroup: {Rate: 5, Burst: 20},
			},
			GroupFor: rateLimitGroup,
		}),
	)

	healthSvc := health.NewService()
	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	registerMeRoutes(api)
	if deps.ClassifyHandler != nil {
		deps.ClassifyHandler.RegisterRoutes(api)
	}
	if deps.RunsHandler != nil {
		deps.RunsHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodGet && strings.HasPrefix(c.Request.URL.Path, "/api/v1/runs/") {
		return runStatusGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
