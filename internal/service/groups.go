package service

import (
	"strings"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

// resolveGroups assembles the group names for an authenticated identity:
// configured defaults, then the email's domain when enabled, then the name of
// every principal the secondary step contributed. Order is exactly this
// concatenation order and duplicates pass through.
func (m *AuthModule) resolveGroups(profile domainauth.UserProfile, secondary []domainauth.Principal) []string {
	var groups []string

	groups = append(groups, m.defaultGroups...)

	if m.addDomainAsGroup && strings.Contains(profile.Email, "@") {
		groups = append(groups, strings.SplitN(profile.Email, "@", 2)[1])
	}

	for _, p := range secondary {
		groups = append(groups, p.Name)
	}
	return groups
}
