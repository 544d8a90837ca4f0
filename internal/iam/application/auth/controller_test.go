package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garaadka-laundry/internal/audit"
	"garaadka-laundry/internal/audit/audittest"
	"garaadka-laundry/internal/iam/application/auth/otpstore"
	"garaadka-laundry/internal/iam/domain/model"
	"garaadka-laundry/internal/iam/domain/user"
	"garaadka-laundry/internal/iam/middleware"
	"garaadka-laundry/internal/infra/database/dbtest"
	"garaadka-laundry/internal/infra/jwt"
	"garaadka-laundry/internal/pkg/mailer"
	"garaadka-laundry/internal/pkg/util"
	"garaadka-laundry/internal/pkg/validation"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendRaw(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func (m *mockMailer) SendTemplate(to, subject, tpl string, data any) error {
	return m.Called(to, subject, tpl, data).Error(0)
}

type harness struct {
	db     *gorm.DB
	router *gin.Engine
}

func setup(t *testing.T, mail mailer.Service) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Register()

	db := dbtest.New(t, append(audittest.Models(), &model.User{}, &model.AccessToken{})...)
	recorder := audittest.NewService(db)
	pwd := util.NewArgon2Password(util.WithCost(1024, 1))
	tokens, err := jwt.NewTokenGenerator(jwt.Config{AccessSecret: "secret", Issuer: "test", AccessExpiry: time.Hour})
	require.NoError(t, err)

	users := user.NewService(db, user.NewRepository(db), recorder, pwd, zap.NewNop())
	mw := middleware.NewMiddleware(middleware.NewRepository(db), tokens, zap.NewNop())
	svc := NewService(Deps{
		DB:         db,
		Repository: NewRepository(db),
		Users:      users,
		Tokens:     tokens,
		Recorder:   recorder,
		Password:   pwd,
		OTP:        otpstore.New(time.Minute),
		Mail:       mail,
		Logger:     zap.NewNop(),
	})

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	NewController(svc, mw, recorder, zap.NewNop()).Routes(r.Group("/api"), pass)
	return &harness{db: db, router: r}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (h *harness) register(t *testing.T, token, username string, extra map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body := map[string]any{"username": username, "full_name": username + " Test", "password": "password1"}
	for k, v := range extra {
		body[k] = v
	}
	return h.do(t, http.MethodPost, "/api/auth/register", token, body)
}

func (h *harness) login(t *testing.T, username, password string) string {
	t.Helper()
	w, body := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func position(body map[string]any) string {
	return body["user"].(map[string]any)["position"].(string)
}

func TestRegister_Positions(t *testing.T) {
	h := setup(t, nil)

	w, body := h.register(t, "", "founder", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "admin", position(body), "first account becomes admin")

	w, body = h.register(t, "", "clerk", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "employee", position(body))

	w, _ = h.register(t, "", "sneaky", map[string]any{"position": "admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := h.login(t, "founder", "password1")
	w, body = h.register(t, adminToken, "shiftlead", map[string]any{"position": "manager"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "manager", position(body))

	var lead model.User
	require.NoError(t, h.db.Where("username = ?", "shiftlead").First(&lead).Error)
	assert.Equal(t, "founder", lead.CreatedBy)

	w, _ = h.register(t, "", "clerk", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = h.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, body["causes"])
}

func TestLogin_MeAndAudit(t *testing.T) {
	h := setup(t, nil)
	h.register(t, "", "founder", nil)

	token := h.login(t, "founder", "password1")

	w, body := h.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "founder", body["user"].(map[string]any)["username"])
	assert.NotEmpty(t, body["session_id"])

	w, _ = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "founder", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "ghost", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var logins []audit.Audit
	require.NoError(t, h.db.Where("action_type = ?", audit.ActionLogin).Order("audit_id").Find(&logins).Error)
	require.Len(t, logins, 3)
	assert.Equal(t, "founder", logins[0].EmpID)
	assert.NotEmpty(t, logins[0].SessionID)
	assert.Contains(t, logins[1].Status, "Failed login attempt for founder")
	assert.Equal(t, "ghost", logins[2].EmpID)

	var u model.User
	require.NoError(t, h.db.Where("username = ?", "founder").First(&u).Error)
	assert.NotNil(t, u.LastLoginAt)
}

func TestLogin_DisabledAccount(t *testing.T) {
	h := setup(t, nil)
	h.register(t, "", "founder", nil)
	require.NoError(t, h.db.Model(&model.User{}).Where("username = ?", "founder").Update("active", false).Error)

	w, _ := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "founder", "password": "password1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_RevokesPreviousToken(t *testing.T) {
	h := setup(t, nil)
	h.register(t, "", "founder", nil)

	first := h.login(t, "founder", "password1")
	second := h.login(t, "founder", "password1")
	require.NotEqual(t, first, second)

	w, _ := h.do(t, http.MethodGet, "/api/auth/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/auth/me", second, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	h := setup(t, nil)
	h.register(t, "", "founder", nil)
	token := h.login(t, "founder", "password1")

	w, _ := h.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token cache is invalidated on logout")

	var n int64
	require.NoError(t, h.db.Model(&audit.Audit{}).Where("action_type = ? AND emp_id = ?", audit.ActionLogout, "founder").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestPasswordReset(t *testing.T) {
	mail := &mockMailer{}
	var sent map[string]string
	mail.On("SendTemplate", "hodan@example.com", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(3).(map[string]string) }).
		Return(nil).Once()

	h := setup(t, mail)
	h.register(t, "", "hodan", map[string]any{"email": "hodan@example.com"})
	oldToken := h.login(t, "hodan", "password1")

	w, _ := h.do(t, http.MethodPost, "/api/auth/otp", "", map[string]any{"email": "hodan@example.com"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, sent["Code"], 6)

	w, _ = h.do(t, http.MethodPost, "/api/auth/otp", "", map[string]any{"email": "hodan@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/otp", "", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	wrong := "000000"
	if sent["Code"] == wrong {
		wrong = "111111"
	}
	w, _ = h.do(t, http.MethodPost, "/api/auth/password/reset", "", map[string]any{
		"email": "hodan@example.com", "otp": wrong, "password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/auth/password/reset", "", map[string]any{
		"email": "hodan@example.com", "otp": sent["Code"], "password": "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	h.login(t, "hodan", "brand-new-pass")
	w, _ = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "hodan", "password": "password1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodGet, "/api/auth/me", oldToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mail.AssertExpectations(t)
}

func TestCreateOTP_WithoutMailer(t *testing.T) {
	h := setup(t, nil)
	h.register(t, "", "hodan", map[string]any{"email": "hodan@example.com"})

	w, _ := h.do(t, http.MethodPost, "/api/auth/otp", "", map[string]any{"email": "hodan@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
