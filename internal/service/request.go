package service

import (
	"net/url"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

// Request is the typed per-request input to the gate. The surrounding
// transport adapter fills it from whatever request representation it owns;
// the state machine never touches transport types directly.
type Request struct {
	// Scheme, Host and Port identify how the caller reached us; they feed
	// the callback redirect URI, which must be byte-identical between the
	// authorization redirect and the token exchange.
	Scheme string
	Host   string
	Port   int

	// ContextPath is the prefix the application is mounted under, usually
	// empty.
	ContextPath string

	// Path is the request path, used for callback classification.
	Path string

	// RequestURI is the path plus query string, saved before redirecting
	// to the provider so the request can be resumed afterwards.
	RequestURI string

	// Query carries the request's query parameters (code, error).
	Query url.Values

	// SessionID is the opaque per-user session key the state store is
	// scoped by.
	SessionID string

	// Mandatory reports whether the caller's policy requires an
	// authenticated identity for this request.
	Mandatory bool
}

// Status classifies the gate's per-request decision.
type Status int

const (
	// StatusAllowAnonymous passes the request through untouched;
	// authentication was not mandatory.
	StatusAllowAnonymous Status = iota

	// StatusAllowed admits the request with a previously established
	// identity; Decision.Identity is set.
	StatusAllowed

	// StatusRedirectToProvider halts the request and redirects the
	// caller to the provider's consent page.
	StatusRedirectToProvider

	// StatusRedirectResumed follows a successful callback: identity is
	// established and the caller is redirected to the originally
	// requested path.
	StatusRedirectResumed

	// StatusContinue follows a successful callback with no saved path;
	// identity is established and processing continues.
	StatusContinue

	// StatusFailed rejects the authentication attempt: the provider
	// reported an error or refused the code/token. No identity is set.
	StatusFailed
)

// Decision is the outcome of classifying one request, together with the side
// effects the transport adapter must apply.
type Decision struct {
	Status Status

	// RedirectURL is set for the redirect statuses.
	RedirectURL string

	// Identity is set when the request proceeds with an authenticated
	// identity (StatusAllowed, StatusRedirectResumed, StatusContinue).
	Identity *domainauth.SavedIdentity

	// AuthType names the mechanism when the identity was freshly
	// established on this request.
	AuthType string
}
