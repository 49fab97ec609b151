package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/caretide/hospital-api/internal/middleware"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/plugin"
	"github.com/caretide/hospital-api/pkg/metrics"
)

// Handler mounts a group of routes.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler splits its routes across the public and authenticated
// surfaces of a tenant.
type AuthHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
	RegisterProtectedRoutes(*gin.RouterGroup)
}

// HospitalHandler serves both the operator surface and the
// tenant-scoped hospital endpoints.
type HospitalHandler interface {
	RegisterAdminRoutes(*gin.RouterGroup)
	RegisterTenantRoutes(*gin.RouterGroup)
}

type HealthHandler interface {
	RegisterRoutes(*gin.Engine)
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	Timeout    time.Duration
	CORSConfig middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	tenant   *middleware.TenantMiddleware
	gate     *middleware.PluginGate
	registry *plugin.Registry

	healthH   HealthHandler
	authH     AuthHandler
	hospitalH HospitalHandler
	patientH  Handler
	userH     Handler
	pluginH   Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	tenant *middleware.TenantMiddleware,
	gate *middleware.PluginGate,
	registry *plugin.Registry,
	healthH HealthHandler,
	authH AuthHandler,
	hospitalH HospitalHandler,
	patientH Handler,
	userH Handler,
	pluginH Handler,
	m *metrics.Metrics,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
		middleware.CORS(config.CORSConfig),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:    engine,
		auth:      auth,
		tenant:    tenant,
		gate:      gate,
		registry:  registry,
		healthH:   healthH,
		authH:     authH,
		hospitalH: hospitalH,
		patientH:  patientH,
		userH:     userH,
		pluginH:   pluginH,
	}
}

func (r *Router) Setup() {
	middleware.RegisterValidators()

	r.healthH.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupAdminRoutes(api)
	r.setupTenantRoutes(api)
}

// setupAdminRoutes mounts the cross-tenant operator surface. It is not
// tenant-resolved; a superadmin token is required.
func (r *Router) setupAdminRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(
		r.auth.Authenticate(),
		r.auth.RequireRole(model.RoleSuperAdmin),
	)
	r.hospitalH.RegisterAdminRoutes(admin)
}

// setupTenantRoutes mounts everything served under a hospital
// subdomain. The tenant is resolved before anything else runs; the
// plugin-gated modules mount behind their per-hospital activation
// checks.
func (r *Router) setupTenantRoutes(rg *gin.RouterGroup) {
	tenant := rg.Group("")
	tenant.Use(r.tenant.Resolve())

	r.authH.RegisterPublicRoutes(tenant)

	protected := tenant.Group("")
	protected.Use(
		r.auth.Authenticate(),
		r.auth.RequireTenantMatch(),
	)

	r.authH.RegisterProtectedRoutes(protected)
	r.hospitalH.RegisterTenantRoutes(protected)
	r.patientH.RegisterRoutes(protected)
	r.userH.RegisterRoutes(protected)
	r.pluginH.RegisterRoutes(protected)

	for _, m := range r.registry.EnabledModules() {
		mod := protected.Group("")
		mod.Use(r.gate.Require(m.Name))
		m.Mount(mod)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
