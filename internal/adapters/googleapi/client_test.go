package googleapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

func newTestClient(t *testing.T, cfg ClientConfig) *Client {
	t.Helper()
	if cfg.ClientID == "" {
		cfg.ClientID = "client-1"
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = "secret-1"
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{ClientSecret: "s"})
	assert.ErrorContains(t, err, "client ID is required")

	_, err = NewClient(ClientConfig{ClientID: "c"})
	assert.ErrorContains(t, err, "client secret is required")

	_, err = NewClient(ClientConfig{ClientID: "c", ClientSecret: "s", AuthEndpoint: "://bad"})
	assert.ErrorIs(t, err, ErrMalformedEndpoint)
}

func TestAuthorizationURL(t *testing.T) {
	client := newTestClient(t, ClientConfig{})

	raw := client.AuthorizationURL("https://app.example.com/j_oauth_callback")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, ScopeEmail+" "+ScopeProfile, q.Get("scope"))
	assert.Equal(t, "https://app.example.com/j_oauth_callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Len(t, q, 4)
}

func TestAuthorizationURL_PreservesEndpointQuery(t *testing.T) {
	client := newTestClient(t, ClientConfig{
		AuthEndpoint: "https://idp.example.com/auth?hd=example.com",
	})

	u, err := url.Parse(client.AuthorizationURL("https://app.example.com/cb"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "example.com", q.Get("hd"))
	assert.Len(t, q, 5)
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(tokenResponse))
	}))
	defer srv.Close()

	client := newTestClient(t, ClientConfig{TokenEndpoint: srv.URL})

	before := time.Now()
	token, err := client.ExchangeCode(context.Background(), "https://app.example.com/cb", "code-123")
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.Equal(t, "1/fFAGRNJru1FTz70BzhT3Zg", token.Token)
	assert.Equal(t, "Bearer", token.Type)
	assert.WithinDuration(t, before.Add(3920*time.Second), token.Expiry, 2*time.Second)

	assert.Equal(t, "code-123", gotForm.Get("code"))
	assert.Equal(t, "client-1", gotForm.Get("client_id"))
	assert.Equal(t, "secret-1", gotForm.Get("client_secret"))
	assert.Equal(t, "https://app.example.com/cb", gotForm.Get("redirect_uri"))
	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
}

func TestExchangeCode_ProviderRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, ClientConfig{TokenEndpoint: srv.URL})

	token, err := client.ExchangeCode(context.Background(), "https://app.example.com/cb", "bad")
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestExchangeCode_ProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(t, ClientConfig{TokenEndpoint: srv.URL})

	_, err := client.ExchangeCode(context.Background(), "https://app.example.com/cb", "code")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnreachable)
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-abc", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(profileResponse))
	}))
	defer srv.Close()

	client := newTestClient(t, ClientConfig{UserinfoEndpoint: srv.URL})

	profile, err := client.FetchProfile(context.Background(), &domainauth.AccessToken{Token: "token-abc"})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "fake.name@gmail.com", profile.Email)
	assert.True(t, profile.VerifiedEmail)
}

func TestFetchProfile_ProviderRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, ClientConfig{UserinfoEndpoint: srv.URL})

	profile, err := client.FetchProfile(context.Background(), &domainauth.AccessToken{Token: "expired"})
	require.NoError(t, err)
	assert.Nil(t, profile)
}
