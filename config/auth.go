package config

import "strings"

// Secondary authorization backends selectable via OAUTH_LOGIN_CONTEXT.
const (
	// LoginContextNone disables secondary authorization.
	LoginContextNone = "none"
	// LoginContextDomain grants each user a single group named after the
	// domain of their email address.
	LoginContextDomain = "domain"
	// LoginContextPostgres resolves groups from the login_groups table.
	LoginContextPostgres = "postgres"
)

// OAuthConfig contains the provider credentials and flow settings.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID,required"`
	ClientSecret string `env:"CLIENT_SECRET,required"`

	// Endpoint overrides where the browser is sent to authorize.
	// The token and userinfo endpoints follow the provider defaults
	// unless overridden here.
	Endpoint         string `env:"ENDPOINT"          envDefault:"https://accounts.google.com/o/oauth2/auth"`
	TokenEndpoint    string `env:"TOKEN_ENDPOINT"    envDefault:"https://accounts.google.com/o/oauth2/token"`
	UserinfoEndpoint string `env:"USERINFO_ENDPOINT" envDefault:"https://www.googleapis.com/oauth2/v1/userinfo"`

	// CallbackURI is the path suffix the provider redirects back to.
	CallbackURI string `env:"CALLBACK_URI" envDefault:"/j_oauth_callback"`

	// DefaultGroups is a comma-separated list of groups granted to every
	// authenticated user.
	DefaultGroups string `env:"DEFAULT_GROUPS" envDefault:""`

	// AddDomainAsGroup grants the domain of the user's email address as an
	// additional group.
	AddDomainAsGroup bool `env:"ADD_DOMAIN_AS_GROUP" envDefault:"false"`

	// LoginContext selects the secondary authorization backend.
	LoginContext string `env:"LOGIN_CONTEXT" envDefault:"none"`

	// IgnoreMissingLoginContext downgrades an unrecognized LoginContext
	// value from a startup error to a warning with no secondary step.
	IgnoreMissingLoginContext bool `env:"IGNORE_MISSING_LOGIN_CONTEXT" envDefault:"false"`
}

// Sanitize applies guardrails to OAuth configuration values.
func (o *OAuthConfig) Sanitize() {
	if o.CallbackURI != "" && !strings.HasPrefix(o.CallbackURI, "/") {
		o.CallbackURI = "/" + o.CallbackURI
	}
}

// SplitDefaultGroups returns DefaultGroups as a slice, preserving order.
// Empty entries are kept out; an empty setting yields nil.
func (o *OAuthConfig) SplitDefaultGroups() []string {
	if o.DefaultGroups == "" {
		return nil
	}
	var groups []string
	for _, g := range strings.Split(o.DefaultGroups, ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}
