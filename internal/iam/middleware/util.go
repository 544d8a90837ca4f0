package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"garaadka-laundry/internal/audit"
)

const UserContextKey = "AuthenticatedUserKey"

func SetAuthenticatedUser(c *gin.Context, userLogin *Login) {
	if userLogin != nil {
		c.Set(UserContextKey, userLogin)
		c.Set(audit.SessionIDKey, userLogin.AccessToken.SessionID)
	}
}

func GetAuthenticatedUser(c *gin.Context) (*Login, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	userLogin, ok := value.(*Login)
	if !ok {
		return nil, false
	}
	return userLogin, true
}

// LogAuditEvent records an audit row outside any business transaction.
// Failures are logged by the recorder and never reach the caller.
func LogAuditEvent(c *gin.Context, recorder audit.Recorder, table, recordID string, action audit.ActionType, status string, oldValues, newValues any) {
	recorder.LogEvent(c.Request.Context(), audit.Entry{
		Actor:     audit.ActorFrom(c),
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		Status:    status,
		OldValues: oldValues,
		NewValues: newValues,
	})
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
