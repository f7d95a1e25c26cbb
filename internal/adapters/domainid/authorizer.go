// Package domainid provides the built-in secondary authorizer that derives a
// single principal from the domain of the confirmed email address.
package domainid

import (
	"context"
	"fmt"
	"strings"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

var _ ports.SecondaryAuthorizer = Authorizer{}

// Authorizer contributes the lowercased email domain as a principal. It fails
// when the email has no recognizable domain, which aborts the authentication
// attempt.
type Authorizer struct{}

func (Authorizer) Authorize(_ context.Context, profile domainauth.UserProfile) ([]domainauth.Principal, error) {
	parts := strings.Split(strings.ToLower(profile.Email), "@")
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("unable to determine domain from %q", profile.Email)
	}
	return []domainauth.Principal{{Name: parts[1]}}, nil
}

func (Authorizer) Logout(context.Context) error { return nil }
