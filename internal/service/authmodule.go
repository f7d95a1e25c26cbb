package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

// DefaultCallbackPath is the path suffix the provider redirects back to.
const DefaultCallbackPath = "/j_oauth_callback"

// AuthTypeGoogleOAuth tags identities established by this gate.
const AuthTypeGoogleOAuth = "Google-OAuth"

// Options groups dependencies and settings for the AuthModule.
type Options struct {
	Provider ports.ProviderClient
	States   ports.StateStore

	// Secondary is the optional local login step; nil means not
	// configured and behaves as a no-op.
	Secondary ports.SecondaryAuthorizer

	// CallbackPath defaults to DefaultCallbackPath.
	CallbackPath string

	// DefaultGroups are granted to every authenticated identity.
	DefaultGroups []string

	// AddDomainAsGroup appends the email's domain to the group list.
	AddDomainAsGroup bool

	Logger *slog.Logger
}

// AuthModule is the per-request authentication state machine. It holds only
// read-only configuration and stateless collaborators, so one instance is
// shared safely across concurrent requests.
type AuthModule struct {
	provider         ports.ProviderClient
	states           ports.StateStore
	secondary        ports.SecondaryAuthorizer
	callbackPath     string
	defaultGroups    []string
	addDomainAsGroup bool
	logger           *slog.Logger
}

// NewAuthModule constructs the state machine.
func NewAuthModule(opts Options) (*AuthModule, error) {
	if opts.Provider == nil {
		return nil, errors.New("provider client is required")
	}
	if opts.States == nil {
		return nil, errors.New("state store is required")
	}

	callbackPath := opts.CallbackPath
	if callbackPath == "" {
		callbackPath = DefaultCallbackPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthModule{
		provider:         opts.Provider,
		states:           opts.States,
		secondary:        opts.Secondary,
		callbackPath:     callbackPath,
		defaultGroups:    append([]string(nil), opts.DefaultGroups...),
		addDomainAsGroup: opts.AddDomainAsGroup,
		logger:           logger,
	}, nil
}

// ValidateRequest classifies one inbound request and returns the decision the
// transport adapter must apply. A returned error means the attempt failed for
// an internal reason (provider unreachable, malformed response, secondary
// authorization failure); protocol-level rejections come back as
// StatusFailed with no error.
func (m *AuthModule) ValidateRequest(ctx context.Context, req Request) (Decision, error) {
	switch {
	case m.isCallback(req):
		return m.handleCallback(ctx, req)
	case req.Mandatory:
		return m.handleMandatory(ctx, req)
	default:
		return Decision{Status: StatusAllowAnonymous}, nil
	}
}

// Identity returns the saved identity for a session, if one exists. It never
// touches the provider.
func (m *AuthModule) Identity(ctx context.Context, sessionID string) (*domainauth.SavedIdentity, error) {
	ident, ok, err := m.states.Identity(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read saved identity: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &ident, nil
}

// isCallback reports whether the request is the provider's redirect back to
// us, detected by URL shape.
func (m *AuthModule) isCallback(req Request) bool {
	return strings.Contains(req.Path, m.callbackPath)
}

// handleMandatory serves requests that require authentication and are not
// the provider callback: admit with the saved identity, or start the
// authorization round-trip.
func (m *AuthModule) handleMandatory(ctx context.Context, req Request) (Decision, error) {
	ident, ok, err := m.states.Identity(ctx, req.SessionID)
	if err != nil {
		return Decision{}, fmt.Errorf("read saved identity: %w", err)
	}
	if ok {
		m.logger.DebugContext(ctx, "applying saved identity", "principal", ident.Principal.Name)
		return Decision{Status: StatusAllowed, Identity: &ident}, nil
	}

	m.saveOriginalPath(ctx, req)

	authURL := m.provider.AuthorizationURL(m.redirectURI(req))
	m.logger.DebugContext(ctx, "redirecting to provider", "url", authURL)
	return Decision{Status: StatusRedirectToProvider, RedirectURL: authURL}, nil
}

// saveOriginalPath records the request URI so the request can resume after
// the round-trip. Saving is best-effort: an unrepresentable URI or a store
// failure is logged, never fails the request.
func (m *AuthModule) saveOriginalPath(ctx context.Context, req Request) {
	if _, err := url.ParseRequestURI(req.RequestURI); err != nil {
		m.logger.WarnContext(ctx, "unable to save original request path", "uri", req.RequestURI, "error", err)
		return
	}
	if err := m.states.SaveOriginalPath(ctx, req.SessionID, req.RequestURI); err != nil {
		m.logger.WarnContext(ctx, "unable to save original request path", "uri", req.RequestURI, "error", err)
	}
}

// handleCallback completes the authorization round-trip: exchange the code,
// fetch the profile, run the secondary step, resolve groups, and commit the
// identity. Nothing is written to the session until every step has
// succeeded.
func (m *AuthModule) handleCallback(ctx context.Context, req Request) (Decision, error) {
	if errParam := req.Query.Get("error"); errParam != "" {
		m.logger.WarnContext(ctx, "provider rejected authorization", "error", errParam)
		return Decision{Status: StatusFailed}, nil
	}

	redirectURI := m.redirectURI(req)

	token, err := m.provider.ExchangeCode(ctx, redirectURI, req.Query.Get("code"))
	if err != nil {
		return Decision{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token == nil {
		m.logger.ErrorContext(ctx, "provider refused token exchange")
		return Decision{Status: StatusFailed}, nil
	}

	profile, err := m.provider.FetchProfile(ctx, token)
	if err != nil {
		return Decision{}, fmt.Errorf("fetch user profile: %w", err)
	}
	if profile == nil {
		m.logger.ErrorContext(ctx, "provider refused profile fetch")
		return Decision{Status: StatusFailed}, nil
	}

	secondary, err := m.runSecondary(ctx, *profile)
	if err != nil {
		return Decision{}, err
	}

	ident := domainauth.SavedIdentity{
		Principal: domainauth.NewPrincipal(*profile),
		Groups:    m.resolveGroups(*profile, secondary),
	}
	if saveErr := m.states.SaveIdentity(ctx, req.SessionID, ident); saveErr != nil {
		return Decision{}, fmt.Errorf("save identity: %w", saveErr)
	}

	path, ok, err := m.states.TakeOriginalPath(ctx, req.SessionID)
	if err != nil {
		return Decision{}, fmt.Errorf("take original path: %w", err)
	}
	if ok {
		m.logger.DebugContext(ctx, "redirecting to original request path", "path", path)
		return Decision{
			Status:      StatusRedirectResumed,
			RedirectURL: path,
			Identity:    &ident,
			AuthType:    AuthTypeGoogleOAuth,
		}, nil
	}
	return Decision{Status: StatusContinue, Identity: &ident, AuthType: AuthTypeGoogleOAuth}, nil
}

// runSecondary invokes the optional local login step. A failure of a
// configured step aborts authentication and is reported distinctly from
// provider errors.
func (m *AuthModule) runSecondary(ctx context.Context, profile domainauth.UserProfile) ([]domainauth.Principal, error) {
	if m.secondary == nil {
		return nil, nil
	}
	principals, err := m.secondary.Authorize(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("secondary authorization: %w", errors.Join(domainauth.ErrConfiguration, err))
	}
	return principals, nil
}

// CleanIdentity clears all identity state for the session and signals the
// secondary step to log out. Secondary logout failures are surfaced, not
// swallowed.
func (m *AuthModule) CleanIdentity(ctx context.Context, sessionID string) error {
	if err := m.states.ClearIdentity(ctx, sessionID); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	if m.secondary != nil {
		if err := m.secondary.Logout(ctx); err != nil {
			return fmt.Errorf("secondary logout: %w", err)
		}
	}
	return nil
}

// redirectURI builds the callback redirect URI from the current request:
// scheme, host, port and context path plus the callback suffix, no query or
// fragment. Providers validate exact equality, so the authorization redirect
// and the token exchange both go through here.
func (m *AuthModule) redirectURI(req Request) string {
	hostport := req.Host
	if req.Port > 0 {
		hostport = fmt.Sprintf("%s:%d", req.Host, req.Port)
	}
	return req.Scheme + "://" + hostport + req.ContextPath + m.callbackPath
}
