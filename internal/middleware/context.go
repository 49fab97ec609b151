package middleware

// Context keys shared between middleware and handlers.
const (
	ContextRequestID  = "request_id"
	ContextHospital   = "hospital"
	ContextHospitalID = "hospital_id"
	ContextUserID     = "user_id"
	ContextUserEmail  = "user_email"
	ContextUserRole   = "user_role"
	ContextClaims     = "claims"
)
