package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garaadka-laundry/internal/pkg/validation"
)

func setupRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	svc, _ := setupService(t)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(AuditUserKey, "tester")
		c.Next()
	})
	pass := func(c *gin.Context) { c.Next() }
	NewController(svc, zap.NewNop()).Routes(api, pass, pass)
	return r, svc
}

func TestController_CreateAndList(t *testing.T) {
	r, _ := setupRouter(t)

	body := `{"table_name":"customers","record_id":"3","action_type":"UPDATE","status":"manual note","new_values":{"a":1}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/audit", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?table_name=customers&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, "tester", resp.Logs[0].EmpID)
	assert.JSONEq(t, `{"a":1}`, string(resp.Logs[0].NewValues))
	assert.Equal(t, "null", string(resp.Logs[0].OldValues))
	assert.EqualValues(t, 1, resp.Pagination.Total)
	assert.Equal(t, 5, resp.Pagination.Limit)
	assert.False(t, resp.Pagination.HasMore)
}

func TestController_ActionTypeIgnoresCase(t *testing.T) {
	r, _ := setupRouter(t)

	body := `{"table_name":"orders","record_id":"9","action_type":"delete","status":"manual"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/audit", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit?action_type=delete", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 1)
	assert.Equal(t, ActionDelete, resp.Logs[0].ActionType)
}

func TestController_RejectsBadInput(t *testing.T) {
	r, _ := setupRouter(t)

	cases := []struct {
		method, url, body string
	}{
		{http.MethodPost, "/api/audit", `{"table_name":"customers","action_type":"SELECT"}`},
		{http.MethodPost, "/api/audit", `{"table_name":`},
		{http.MethodGet, "/api/audit?sort_by=password", ""},
		{http.MethodGet, "/api/audit?from=yesterday", ""},
		{http.MethodGet, "/api/audit?limit=100000", ""},
		{http.MethodDelete, "/api/audit/cleanup?retention_days=0", ""},
		{http.MethodDelete, "/api/audit/cleanup", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.url, strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestController_RecordHistoryAndExport(t *testing.T) {
	r, svc := setupRouter(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, Entry{Actor: Actor{EmpID: "amina"}, TableName: "orders", RecordID: "11", Action: ActionUpdate, Status: fmt.Sprintf("change %d", i)})
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/record/orders/11", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		History []AuditResponse `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.History, 3)
	assert.Equal(t, "change 0", history.History[0].Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/export?table_name=orders", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4)

	page, err := svc.List(ctx, Query{ActionType: ActionExport})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total, "exports are audited")
}

func TestController_UserActivityAndStats(t *testing.T) {
	r, svc := setupRouter(t)
	_, err := svc.Create(context.Background(), Entry{Actor: Actor{EmpID: "omar"}, TableName: "register", RecordID: "2", Action: ActionCreate})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/user/omar?from="+time.Now().UTC().Format("2006-01-02"), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Logs, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audit/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var st Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.EqualValues(t, 1, st.Total)
}

func TestParseBound(t *testing.T) {
	lower, err := ParseBound("2024-05-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *lower)

	upper, err := ParseBound("2024-05-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), *upper)

	exact, err := ParseBound("2024-05-01T10:00:00+03:00", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC), *exact)

	none, err := ParseBound("", false)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseBound("01/05/2024", false)
	assert.Error(t, err)
}
