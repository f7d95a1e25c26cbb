// Package ports defines interfaces (hexagonal ports) for the authentication
// gate. Implementations live in internal/adapters; orchestration in
// internal/service.
package ports

import (
	"context"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

// ProviderClient talks to the identity provider. It is stateless: every call
// is a pure request/response exchange.
//
// ExchangeCode and FetchProfile return (nil, nil) when the provider answers
// with a non-200 status ("no token" / "no profile"); callers must check for
// nil before proceeding. A transport failure is returned as an error wrapping
// googleapi.ErrProviderUnreachable.
type ProviderClient interface {
	// AuthorizationURL builds the URL the unauthenticated caller is
	// redirected to, carrying the given redirect URI.
	AuthorizationURL(redirectURI string) string

	// ExchangeCode trades an authorization code for an access token.
	// The redirectURI must match the one used in AuthorizationURL exactly.
	ExchangeCode(ctx context.Context, redirectURI, code string) (*domainauth.AccessToken, error)

	// FetchProfile retrieves the user profile for an access token.
	FetchProfile(ctx context.Context, token *domainauth.AccessToken) (*domainauth.UserProfile, error)
}

// StateStore persists the two pieces of session-scoped gate state: the
// established identity and the originally requested path. Both are keyed by
// an opaque session ID owned by the surrounding transport.
type StateStore interface {
	// SaveIdentity writes the identity for the session. Implementations
	// must treat a zero identity as a no-op.
	SaveIdentity(ctx context.Context, sessionID string, ident domainauth.SavedIdentity) error

	// Identity reads the saved identity without clearing it. The bool is
	// false when no identity has been stored for the session.
	Identity(ctx context.Context, sessionID string) (domainauth.SavedIdentity, bool, error)

	// ClearIdentity removes the saved identity (logout).
	ClearIdentity(ctx context.Context, sessionID string) error

	// SaveOriginalPath records the request URI to resume after the
	// provider round-trip.
	SaveOriginalPath(ctx context.Context, sessionID, requestURI string) error

	// TakeOriginalPath reads and clears the saved request URI in one
	// logical operation. It must never return the same value twice for
	// the same write. The bool is false when nothing was stored.
	TakeOriginalPath(ctx context.Context, sessionID string) (string, bool, error)
}

// SecondaryAuthorizer is the optional local login step layered on top of the
// externally verified identity. It runs after the provider confirms a profile
// and contributes zero or more principal-like entries whose names join the
// group list.
//
// A nil SecondaryAuthorizer on the auth module means "not configured" and
// behaves as a no-op. A configured authorizer that fails aborts the
// authentication attempt with an error wrapping auth.ErrConfiguration.
type SecondaryAuthorizer interface {
	Authorize(ctx context.Context, profile domainauth.UserProfile) ([]domainauth.Principal, error)

	// Logout signals the end of the local login session. Failures are
	// surfaced to the caller, not swallowed.
	Logout(ctx context.Context) error
}
