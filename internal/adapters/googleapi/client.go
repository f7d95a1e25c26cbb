// Package googleapi implements the ports.ProviderClient against Google's
// OAuth2 endpoints using plain HTTP calls and the flat-object decoder in
// parse.go.
package googleapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

// Google endpoint and scope defaults.
const (
	DefaultAuthEndpoint     = "https://accounts.google.com/o/oauth2/auth"
	DefaultTokenEndpoint    = "https://accounts.google.com/o/oauth2/token"
	DefaultUserinfoEndpoint = "https://www.googleapis.com/oauth2/v1/userinfo"

	ScopeEmail   = "https://www.googleapis.com/auth/userinfo.email"
	ScopeProfile = "https://www.googleapis.com/auth/userinfo.profile"
)

var (
	// ErrMalformedEndpoint is returned at construction when the configured
	// authorization endpoint cannot be parsed as a URL.
	ErrMalformedEndpoint = errors.New("malformed authorization endpoint")

	// ErrProviderUnreachable wraps transport failures (connect, write,
	// read) talking to the provider. Such failures are fatal for the
	// request's authentication attempt and are not retried.
	ErrProviderUnreachable = errors.New("identity provider unreachable")
)

// Ensure compile-time conformance.
var _ ports.ProviderClient = (*Client)(nil)

// ClientConfig holds configuration for the provider client.
type ClientConfig struct {
	ClientID     string
	ClientSecret string

	// AuthEndpoint is the authorization (consent) endpoint. Any query
	// string already present on it is preserved. Defaults to Google's.
	AuthEndpoint string

	// TokenEndpoint and UserinfoEndpoint default to Google's; overridable
	// for tests.
	TokenEndpoint    string
	UserinfoEndpoint string

	HTTPClient *http.Client // optional, defaults to a 30s-timeout client
	Logger     *slog.Logger
}

// Client implements ports.ProviderClient. It holds no per-request state and
// is safe for concurrent use.
type Client struct {
	clientID         string
	clientSecret     string
	authEndpoint     *url.URL
	tokenEndpoint    string
	userinfoEndpoint string
	httpClient       *http.Client
	logger           *slog.Logger

	now func() time.Time
}

// NewClient validates the configuration and constructs a Client. A missing
// client ID or secret, or an unparseable authorization endpoint, refuses to
// start.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}

	endpoint := cfg.AuthEndpoint
	if endpoint == "" {
		endpoint = DefaultAuthEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedEndpoint, endpoint)
	}

	tokenEndpoint := cfg.TokenEndpoint
	if tokenEndpoint == "" {
		tokenEndpoint = DefaultTokenEndpoint
	}
	userinfoEndpoint := cfg.UserinfoEndpoint
	if userinfoEndpoint == "" {
		userinfoEndpoint = DefaultUserinfoEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		clientID:         cfg.ClientID,
		clientSecret:     cfg.ClientSecret,
		authEndpoint:     parsed,
		tokenEndpoint:    tokenEndpoint,
		userinfoEndpoint: userinfoEndpoint,
		httpClient:       httpClient,
		logger:           logger,
		now:              time.Now,
	}, nil
}

// AuthorizationURL builds the provider consent URL for the given redirect
// URI. Query parameters already present on the configured endpoint are
// preserved; exactly four are appended: scope, redirect_uri, response_type,
// client_id.
func (c *Client) AuthorizationURL(redirectURI string) string {
	u := *c.authEndpoint
	q := u.Query()
	q.Set("scope", ScopeEmail+" "+ScopeProfile)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	u.RawQuery = q.Encode()
	return u.String()
}

// ExchangeCode posts the authorization code to the token endpoint. A non-200
// answer yields (nil, nil); the caller must check before proceeding.
func (c *Client) ExchangeCode(ctx context.Context, redirectURI, code string) (*domainauth.AccessToken, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

	body, ok, err := c.send(ctx, http.MethodPost, c.tokenEndpoint, form)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return parseAccessToken(body, c.now())
}

// FetchProfile retrieves the user profile for the access token. Same non-200
// contract as ExchangeCode.
func (c *Client) FetchProfile(ctx context.Context, token *domainauth.AccessToken) (*domainauth.UserProfile, error) {
	target := c.userinfoEndpoint + "?access_token=" + url.QueryEscape(token.Token)

	body, ok, err := c.send(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return parseUserProfile(body)
}

// send is the one request/response primitive shared by the token exchange and
// the profile fetch: optional form body, status check, body read. It returns
// ok=false on any non-200 status and wraps transport failures in
// ErrProviderUnreachable.
func (c *Client) send(ctx context.Context, method, target string, form url.Values) (string, bool, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return "", false, fmt.Errorf("build provider request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s %s: %v", ErrProviderUnreachable, method, req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "provider refused request",
			"method", method,
			"status", resp.StatusCode,
		)
		return "", false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("%w: read response: %v", ErrProviderUnreachable, err)
	}
	return string(data), true, nil
}
