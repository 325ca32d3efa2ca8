package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habeshaexpat/internal/handlers"
	"habeshaexpat/internal/middleware"
	"habeshaexpat/internal/models"
	"habeshaexpat/internal/otp"
	"habeshaexpat/internal/routes"
	"habeshaexpat/internal/services"
)

// ---- fakes shared by the handler tests ----

type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	u, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(userID int, passwordHash string) error {
	for _, u := range r.byEmail {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *fakeUserRepo) TouchLastLogin(userID int) error { return nil }

type fakeEmails struct {
	lastCode      string
	lastRecipient string
}

func (e *fakeEmails) SendResetCode(email, code string) error {
	e.lastRecipient = email
	e.lastCode = code
	return nil
}

func (e *fakeEmails) SendPasswordChangedNotice(email string) error { return nil }

type stubAudit struct {
	entries []*models.AuditLog
}

func (s *stubAudit) Record(actor, action, detail, ip string) {
	s.entries = append(s.entries, &models.AuditLog{Actor: actor, Action: action, Detail: detail, IP: ip})
}

func (s *stubAudit) List(limit, offset int) ([]*models.AuditLog, error) { return s.entries, nil }

func (s *stubAudit) GetCount() (int, error) { return len(s.entries), nil }

type stubSettings struct {
	enabled map[string]bool
}

func (s *stubSettings) List() ([]*models.Setting, error) { return nil, nil }

func (s *stubSettings) Set(key, value string) (*models.Setting, error) {
	return &models.Setting{Key: key, Value: value}, nil
}

func (s *stubSettings) IsEnabled(key string) bool { return s.enabled[key] }

type fakeReports struct {
	path string
}

func (f *fakeReports) GenerateAuditReport(entries []*models.AuditLog) (string, error) {
	return f.path, nil
}

// testStack wires real services over fakes, the way app.Run does over Postgres.
type testStack struct {
	router   *gin.Engine
	users    *fakeUserRepo
	emails   *fakeEmails
	audit    *stubAudit
	settings *stubSettings
	reports  *fakeReports
	auth     services.AuthService
}

func newTestStack(t *testing.T, otpTTL time.Duration) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.JWTKey = []byte("test-jwt-secret")

	st := &testStack{
		users:    &fakeUserRepo{byEmail: map[string]*models.User{}},
		emails:   &fakeEmails{},
		audit:    &stubAudit{},
		settings: &stubSettings{enabled: map[string]bool{}},
		reports:  &fakeReports{},
		auth:     services.NewAuthService(),
	}

	issuer := otp.NewIssuer("test-otp-secret", otpTTL)
	resets := services.NewPasswordResetService(st.users, issuer, st.emails, st.auth)
	alerts := services.NewAlertService("", 0, false)

	authHandler := handlers.NewAuthHandler(services.NewUserService(st.users), st.auth, st.audit, st.settings, alerts, time.Hour)
	resetHandler := handlers.NewResetHandler(resets, st.audit, st.settings, alerts)
	auditHandler := handlers.NewAuditHandler(st.audit, st.reports)
	settingHandler := handlers.NewSettingHandler(st.settings, st.audit)

	st.router = routes.SetupRoutes(gin.New(), authHandler, resetHandler, auditHandler, settingHandler)
	return st
}

func (st *testStack) addUser(t *testing.T, email, password string, roleID int) *models.User {
	t.Helper()
	hash, err := st.auth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		ID:           len(st.users.byEmail) + 1,
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
		CreatedAt:    time.Now(),
	}
	st.users.byEmail[email] = u
	return u
}

func (st *testStack) do(t *testing.T, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	st.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// ---- /send-otp ----

func TestSendOTP(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", 50)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "admin@example.com", body["email"])
	token, _ := body["token"].(string)
	assert.Contains(t, token, ".")
	assert.Len(t, strings.SplitN(token, ".", 2)[0], 64)

	assert.Equal(t, "admin@example.com", st.emails.lastRecipient)
	assert.Len(t, st.emails.lastCode, 6)
}

func TestSendOTPUnknownEmail(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "nobody@example.com"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, st.emails.lastCode)
}

func TestSendOTPMissingEmail(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendOTPKillSwitch(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", 50)
	st.settings.enabled[services.SettingResetsDisabled] = true

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ---- /verify-otp ----

func TestVerifyOTPEndToEnd(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", 50)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = st.do(t, http.MethodPost, "/verify-otp", gin.H{
		"email": "admin@example.com",
		"code":  st.emails.lastCode,
		"token": token,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["verified"])
}

func TestVerifyOTPExpired(t *testing.T) {
	// negative TTL issues a token that is already past its expiry
	st := newTestStack(t, -time.Second)
	st.addUser(t, "admin@example.com", "correct horse", 50)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = st.do(t, http.MethodPost, "/verify-otp", gin.H{
		"email": "admin@example.com",
		"code":  st.emails.lastCode,
		"token": token,
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Code has expired", decodeBody(t, w)["error"])
}

func TestVerifyOTPWrongCode(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", 50)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	wrong := "123456"
	if wrong == st.emails.lastCode {
		wrong = "654321"
	}
	w = st.do(t, http.MethodPost, "/verify-otp", gin.H{
		"email": "admin@example.com",
		"code":  wrong,
		"token": token,
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Code", decodeBody(t, w)["error"])
}

func TestVerifyOTPMalformedToken(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", 50)

	w := st.do(t, http.MethodPost, "/send-otp", gin.H{"email": "admin@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = st.do(t, http.MethodPost, "/verify-otp", gin.H{
		"email": "admin@example.com",
		"code":  st.emails.lastCode,
		"token": strings.ReplaceAll(token, ".", ""),
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Malformed token", decodeBody(t, w)["error"])
}

func TestVerifyOTPMissingToken(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)

	w := st.do(t, http.MethodPost, "/verify-otp", gin.H{
		"email": "admin@example.com",
		"code":  "123456",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- /reset-password ----

func TestResetPassword(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	u := st.addUser(t, "admin@example.com", "old password", 50)
	oldHash := u.PasswordHash

	w := st.do(t, http.MethodPost, "/reset-password", gin.H{
		"email":        "admin@example.com",
		"new_password": "brand new pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotEqual(t, oldHash, u.PasswordHash)
	assert.True(t, st.auth.CheckPassword(u.PasswordHash, "brand new pass"))
}

func TestResetPasswordPolicyViolation(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "old password", 50)

	w := st.do(t, http.MethodPost, "/reset-password", gin.H{
		"email":        "admin@example.com",
		"new_password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)

	w := st.do(t, http.MethodPost, "/reset-password", gin.H{
		"email":        "nobody@example.com",
		"new_password": "brand new pass",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
