package handlers_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habeshaexpat/internal/authz"
)

func TestAuditRequiresPrivilegedRole(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)

	w := st.do(t, http.MethodGet, "/audit/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditListReturnsRecordedEntries(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", authz.RoleSuperAdmin)
	token := loginToken(t, st, "admin@example.com", "correct horse")

	// the login above was itself audited
	w := st.do(t, http.MethodGet, "/audit/", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	entries, _ := body["entries"].([]any)
	require.NotEmpty(t, entries)
	first := entries[0].(map[string]any)
	assert.Equal(t, "login.success", first["action"])
}

func TestAuditCount(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", authz.RoleSuperAdmin)
	token := loginToken(t, st, "admin@example.com", "correct horse")

	w := st.do(t, http.MethodGet, "/audit/count", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["count"])
}

func TestAuditExportStreamsPDF(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "admin@example.com", "correct horse", authz.RoleSuperAdmin)
	token := loginToken(t, st, "admin@example.com", "correct horse")

	path := filepath.Join(t.TempDir(), "audit.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	st.reports.path = path

	w := st.do(t, http.MethodGet, "/audit/export", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "audit.pdf")
	assert.Contains(t, w.Body.String(), "%PDF")
}

func TestReadOnlyRoleCannotMutate(t *testing.T) {
	st := newTestStack(t, 3*time.Minute)
	st.addUser(t, "viewer@example.com", "correct horse", authz.RoleAudit)
	token := loginToken(t, st, "viewer@example.com", "correct horse")

	w := st.do(t, http.MethodPut, "/settings/logins_disabled", gin.H{"value": "on"},
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
