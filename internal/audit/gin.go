package audit

import "github.com/gin-gonic/gin"

// Context keys shared with the auth and audit middlewares.
const (
	AuditUserKey = "auditUser"
	SessionIDKey = "auditSessionID"
	RequestIDKey = "request_id"
)

// GetAuditUser returns the identifier the auth middleware stored for the
// request, or "anonymous".
func GetAuditUser(c *gin.Context) string {
	if user := c.GetString(AuditUserKey); user != "" {
		return user
	}
	return "anonymous"
}

// ActorFrom reads the acting user and request origin from the gin context.
func ActorFrom(c *gin.Context) Actor {
	session := c.GetString(SessionIDKey)
	if session == "" {
		session = c.GetString(RequestIDKey)
	}
	return Actor{
		EmpID:     GetAuditUser(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		SessionID: session,
	}
}
