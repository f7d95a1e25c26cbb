// Package auth contains domain-level types for the OAuth authentication gate.
// It is pure and free of transport/adapter concerns.
package auth

import "time"

// AccessToken is the short-lived token returned by the provider's token
// endpoint. It is consumed immediately by the user-info fetch and never
// persisted.
type AccessToken struct {
	Token  string
	Expiry time.Time
	Type   string
}

// UserProfile is the authoritative representation of who the provider says
// the caller is. Immutable once constructed; fields absent from the provider
// response are left at their zero value.
type UserProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Gender        string `json:"gender"`
	Link          string `json:"link"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// Principal is an identity marker produced once per successful authentication.
// Its name is the profile's email address.
type Principal struct {
	Name    string      `json:"name"`
	Profile UserProfile `json:"profile"`
}

// NewPrincipal wraps a provider-confirmed profile as a Principal.
// Only call this with a profile the provider actually returned; the gate never
// fabricates identities locally.
func NewPrincipal(profile UserProfile) Principal {
	return Principal{Name: profile.Email, Profile: profile}
}

// SavedIdentity is the pair the state store persists per session: the
// established principal and its resolved group names.
type SavedIdentity struct {
	Principal Principal `json:"principal"`
	Groups    []string  `json:"groups"`
}

// IsZero reports whether no principal has been established.
func (s SavedIdentity) IsZero() bool { return s.Principal.Name == "" }
