package httpx

import (
	"context"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
type identityKey struct{}

// authTypeKey carries the mechanism name that authenticated the request.
type authTypeKey struct{}

// SetIdentityInContext returns a child context that carries the given identity.
// If ident is nil, the original ctx is returned unchanged.
func SetIdentityInContext(ctx context.Context, ident *domainauth.SavedIdentity) context.Context {
	if ident == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, ident)
}

// IdentityFromContext returns the authenticated identity from context and a
// boolean indicating presence.
func IdentityFromContext(ctx context.Context) (*domainauth.SavedIdentity, bool) {
	if ident, ok := ctx.Value(identityKey{}).(*domainauth.SavedIdentity); ok && ident != nil {
		return ident, true
	}
	return nil, false
}

// SetAuthTypeInContext records which mechanism authenticated the request.
// An empty authType leaves the context unchanged.
func SetAuthTypeInContext(ctx context.Context, authType string) context.Context {
	if authType == "" {
		return ctx
	}
	return context.WithValue(ctx, authTypeKey{}, authType)
}

// AuthTypeFromContext returns the mechanism name recorded for the request,
// or the empty string when the request was not authenticated by the gate.
func AuthTypeFromContext(ctx context.Context) string {
	if authType, ok := ctx.Value(authTypeKey{}).(string); ok {
		return authType
	}
	return ""
}
