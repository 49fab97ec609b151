package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/caretide/hospital-api/internal/handler"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/pkg/auth"
)

type AuthMiddleware struct {
	jwtService auth.JWTService
	tokenRepo  repository.TokenRepository
}

func NewAuthMiddleware(jwtService auth.JWTService, tokenRepo repository.TokenRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenRepo:  tokenRepo,
	}
}

// Authenticate verifies the bearer token and sets the caller's identity
// in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		revoked, err := m.tokenRepo.IsTokenInvalidated(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to verify token"))
			c.Abort()
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("token revoked"))
			c.Abort()
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.UserRole(c.GetString(ContextUserRole))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient role"))
		c.Abort()
	}
}

// RequireTenantMatch rejects tokens issued for a different hospital than
// the one the subdomain resolved to. Superadmins operate across tenants.
func (m *AuthMiddleware) RequireTenantMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing credentials"))
			c.Abort()
			return
		}
		if claims.Role == string(model.RoleSuperAdmin) {
			c.Next()
			return
		}

		hospitalID := c.GetString(ContextHospitalID)
		if hospitalID == "" || claims.HospitalID.String() != hospitalID {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("token not valid for this hospital"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClaims extracts the token claims set by Authenticate.
func GetClaims(c *gin.Context) (*model.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
