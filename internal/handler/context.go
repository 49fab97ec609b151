package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys mirrored from the middleware package to avoid an import
// cycle.
const (
	contextHospitalID = "hospital_id"
	contextUserID     = "user_id"
	contextUserRole   = "user_role"
)

// HospitalID returns the tenant id resolved from the subdomain.
func HospitalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(contextHospitalID))
	return id, err == nil
}

// ActorID returns the authenticated user's id.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(contextUserID))
	return id, err == nil
}

// Role returns the authenticated user's role string.
func Role(c *gin.Context) string {
	return c.GetString(contextUserRole)
}
