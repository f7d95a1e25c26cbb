package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/service"
)

var _ AuthModuleInterface = (*service.AuthModule)(nil)

func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	saved := domainauth.SavedIdentity{
		Principal: domainauth.NewPrincipal(domainauth.UserProfile{Email: "user@example.org"}),
	}
	require.NoError(t, f.states.SaveIdentity(ctx, "s1", saved))

	h := &AuthHandlers{Module: f.gate.Module}
	req := httptest.NewRequest(http.MethodPost, "http://app.example.com/auth/logout?redirect_uri=/goodbye", nil)
	req.AddCookie(sessionCookie("s1"))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/goodbye", rec.Header().Get("Location"))

	_, ok, err := f.states.Identity(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogout_RejectsAbsoluteRedirect(t *testing.T) {
	f := newGateFixture(t)

	h := &AuthHandlers{Module: f.gate.Module}
	req := httptest.NewRequest(http.MethodPost, "http://app.example.com/auth/logout?redirect_uri=https://evil.example.com/", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestStatus_Authenticated(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()

	saved := domainauth.SavedIdentity{
		Principal: domainauth.NewPrincipal(domainauth.UserProfile{Email: "user@example.org"}),
		Groups:    []string{"users"},
	}
	require.NoError(t, f.states.SaveIdentity(ctx, "s1", saved))

	h := &AuthHandlers{Module: f.gate.Module}
	handler := f.gate.Observe(http.HandlerFunc(h.Status))

	req := httptest.NewRequest(http.MethodGet, "http://app.example.com/auth/status", nil)
	req.AddCookie(sessionCookie("s1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), "user@example.org")
}

func TestStatus_Anonymous(t *testing.T) {
	f := newGateFixture(t)
	h := &AuthHandlers{Module: f.gate.Module}
	handler := f.gate.Observe(http.HandlerFunc(h.Status))

	req := httptest.NewRequest(http.MethodGet, "http://app.example.com/auth/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}
