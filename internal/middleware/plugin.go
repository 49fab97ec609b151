package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/plugin"
)

// ActivationChecker reports whether a plugin is active for a hospital.
type ActivationChecker interface {
	IsActive(ctx context.Context, hospitalID uuid.UUID, pluginName string) (bool, error)
}

type PluginGate struct {
	registry *plugin.Registry
	checker  ActivationChecker
	cache    *gocache.Cache
}

func NewPluginGate(registry *plugin.Registry, checker ActivationChecker) *PluginGate {
	return &PluginGate{
		registry: registry,
		checker:  checker,
		cache:    gocache.New(30*time.Second, time.Minute),
	}
}

// Require blocks requests to a module's routes unless the module is
// enabled for the deployment and activated for the request's hospital.
// Activation lookups are cached briefly, so toggling a plugin can take
// up to the cache TTL to bite.
func (g *PluginGate) Require(pluginName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.registry.Enabled(pluginName) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("feature not available"))
			c.Abort()
			return
		}

		hospitalID, err := uuid.Parse(c.GetString(ContextHospitalID))
		if err != nil {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
			c.Abort()
			return
		}

		active, err := g.isActive(c.Request.Context(), hospitalID, pluginName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to check feature activation"))
			c.Abort()
			return
		}
		if !active {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("feature not activated for this hospital"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (g *PluginGate) isActive(ctx context.Context, hospitalID uuid.UUID, pluginName string) (bool, error) {
	key := hospitalID.String() + ":" + pluginName
	if cached, ok := g.cache.Get(key); ok {
		return cached.(bool), nil
	}

	active, err := g.checker.IsActive(ctx, hospitalID, pluginName)
	if err != nil {
		return false, err
	}
	g.cache.Set(key, active, gocache.DefaultExpiration)
	return active, nil
}
