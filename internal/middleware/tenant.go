package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

const (
	tenantCacheTTL     = 5 * time.Minute
	tenantCacheCleanup = 10 * time.Minute
)

// TenantMiddleware resolves the hospital a request belongs to from the
// Host header subdomain. Lookups are cached briefly so every request
// does not hit the database.
type TenantMiddleware struct {
	hospitalRepo repository.HospitalRepository
	baseDomain   string
	cache        *gocache.Cache
}

func NewTenantMiddleware(hospitalRepo repository.HospitalRepository, baseDomain string) *TenantMiddleware {
	return &TenantMiddleware{
		hospitalRepo: hospitalRepo,
		baseDomain:   strings.ToLower(baseDomain),
		cache:        gocache.New(tenantCacheTTL, tenantCacheCleanup),
	}
}

// Resolve extracts the subdomain, loads the hospital and stores it in
// the request context. Unknown subdomains get a 404, deactivated
// hospitals a 403.
func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		subdomain := m.subdomain(c.Request.Host)
		if subdomain == "" {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
			c.Abort()
			return
		}

		hospital, err := m.lookup(c, subdomain)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to resolve hospital"))
			c.Abort()
			return
		}
		if hospital == nil {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("hospital not found"))
			c.Abort()
			return
		}
		if !hospital.IsActive {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("hospital is deactivated"))
			c.Abort()
			return
		}

		c.Set(ContextHospital, hospital)
		c.Set(ContextHospitalID, hospital.ID.String())
		c.Next()
	}
}

func (m *TenantMiddleware) lookup(c *gin.Context, subdomain string) (*model.Hospital, error) {
	if cached, ok := m.cache.Get(subdomain); ok {
		return cached.(*model.Hospital), nil
	}

	hospital, err := m.hospitalRepo.GetBySubdomain(c.Request.Context(), subdomain)
	if err != nil {
		return nil, err
	}
	if hospital != nil {
		m.cache.Set(subdomain, hospital, gocache.DefaultExpiration)
	}
	return hospital, nil
}

// Invalidate drops a cached hospital, used after tenant updates.
func (m *TenantMiddleware) Invalidate(subdomain string) {
	m.cache.Delete(strings.ToLower(subdomain))
}

// subdomain returns the lowercase first host label, or "" when the host
// is the bare base domain, an IP, or otherwise not tenant-shaped.
func (m *TenantMiddleware) subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	if net.ParseIP(host) != nil {
		return ""
	}
	if m.baseDomain != "" {
		if host == m.baseDomain {
			return ""
		}
		if rest, ok := strings.CutSuffix(host, "."+m.baseDomain); ok {
			if rest == "" || strings.Contains(rest, ".") {
				return ""
			}
			return rest
		}
		return ""
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[0]
}

// GetHospital extracts the hospital set by Resolve.
func GetHospital(c *gin.Context) (*model.Hospital, bool) {
	v, ok := c.Get(ContextHospital)
	if !ok {
		return nil, false
	}
	hospital, ok := v.(*model.Hospital)
	return hospital, ok
}
