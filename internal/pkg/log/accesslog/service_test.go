package accesslog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/infra/database/dbtest"
)

func TestMiddleware_PersistsOnShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.New(t, &AccessLog{})
	svc := NewService(NewRepository(db), zap.NewNop(), 16)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(audit.RequestIDKey, "req-1")
		c.Set(audit.AuditUserKey, "clerk")
		c.Next()
	})
	r.Use(Middleware(svc))
	r.GET("/api/customers/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	var rows []AccessLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, "clerk", rows[0].Username)
	assert.Equal(t, "/api/customers/7", rows[0].Path)
	assert.Equal(t, "/api/customers/:id", rows[0].Route)
	assert.Equal(t, http.StatusNoContent, rows[0].StatusCode)
}

func TestLog_DropsWhenFull(t *testing.T) {
	svc := NewService(NewRepository(nil), zap.NewNop(), 1)

	assert.True(t, svc.Log(AccessLog{RequestID: "a"}))
	assert.False(t, svc.Log(AccessLog{RequestID: "b"}))
}
