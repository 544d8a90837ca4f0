package cashclose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/pkg/validation"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	svc := newService(newDB(t), nil, "")
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(audit.AuditUserKey, "cashier")
		c.Next()
	})
	NewController(svc, zap.NewNop()).Routes(api)
	return r
}

func send(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCloseCashFlow(t *testing.T) {
	r := setupRouter(t)
	payload := map[string]any{
		"close_date":    "2024-05-01",
		"cash":          30,
		"card":          20,
		"mobile":        0,
		"bank_transfer": 0,
		"total_amount":  50,
	}

	w, body := send(r, http.MethodPost, "/api/close-cash/validate", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["valid"])

	w, body = send(r, http.MethodPost, "/api/close-cash", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := uint(body["close_id"].(float64))

	w, body = send(r, http.MethodPost, "/api/close-cash/validate", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["errors"])

	w, body = send(r, http.MethodPost, "/api/close-cash", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", body["error"])

	w, body = send(r, http.MethodGet, "/api/close-cash/date/2024-05-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, id, body["close_id"])

	w, _ = send(r, http.MethodGet, fmt.Sprintf("/api/close-cash/%d", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = send(r, http.MethodGet, "/api/close-cash/date/2024-06-01", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = send(r, http.MethodGet, "/api/close-cash?from=2024-04-01&to=2024-05-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["closes"], 1)

	w, body = send(r, http.MethodGet, "/api/close-cash?from=2024-06-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["closes"], 0)

	w, body = send(r, http.MethodGet, "/api/close-cash/summary/2024-05-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["closed"])
}

func TestCloseCash_Mismatch(t *testing.T) {
	r := setupRouter(t)

	w, body := send(r, http.MethodPost, "/api/close-cash", map[string]any{
		"close_date":   "2024-05-01",
		"cash":         30,
		"card":         20,
		"total_amount": 51,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "do not match")
	assert.NotEmpty(t, body["causes"])

	w, body = send(r, http.MethodPut, "/api/close-cash/1", map[string]any{"cash": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = send(r, http.MethodGet, "/api/close-cash/summary/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
