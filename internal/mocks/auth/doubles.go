// Package auth contains simple hand-written test doubles for the gate's
// ports, usable without code generation.
package auth

import (
	"context"
	"sync"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.ProviderClient      = (*FakeProviderClient)(nil)
	_ ports.StateStore          = (*MemoryStateStore)(nil)
	_ ports.SecondaryAuthorizer = (*StubSecondaryAuthorizer)(nil)
)

// FakeProviderClient simulates the identity provider with deterministic
// responses. Override the Func fields for error paths; otherwise the Default
// values are returned and calls are counted.
type FakeProviderClient struct {
	AuthorizationURLFunc func(redirectURI string) string
	ExchangeCodeFunc     func(ctx context.Context, redirectURI, code string) (*domainauth.AccessToken, error)
	FetchProfileFunc     func(ctx context.Context, token *domainauth.AccessToken) (*domainauth.UserProfile, error)

	DefaultToken   domainauth.AccessToken
	DefaultProfile domainauth.UserProfile

	// Call records for assertions.
	ExchangeCalls     int
	FetchCalls        int
	ExchangedRedirect string
	ExchangedCode     string
}

// NewFakeProviderClient returns a fake provider with a sensible default
// identity.
func NewFakeProviderClient() *FakeProviderClient {
	return &FakeProviderClient{
		DefaultToken: domainauth.AccessToken{Token: "token-1", Type: "Bearer"},
		DefaultProfile: domainauth.UserProfile{
			ID:            "user-1",
			Email:         "user@example.org",
			VerifiedEmail: true,
			Name:          "Example User",
		},
	}
}

func (f *FakeProviderClient) AuthorizationURL(redirectURI string) string {
	if f.AuthorizationURLFunc != nil {
		return f.AuthorizationURLFunc(redirectURI)
	}
	return "https://idp.example.com/auth?redirect_uri=" + redirectURI
}

func (f *FakeProviderClient) ExchangeCode(ctx context.Context, redirectURI, code string) (*domainauth.AccessToken, error) {
	f.ExchangeCalls++
	f.ExchangedRedirect = redirectURI
	f.ExchangedCode = code
	if f.ExchangeCodeFunc != nil {
		return f.ExchangeCodeFunc(ctx, redirectURI, code)
	}
	token := f.DefaultToken
	return &token, nil
}

func (f *FakeProviderClient) FetchProfile(ctx context.Context, token *domainauth.AccessToken) (*domainauth.UserProfile, error) {
	f.FetchCalls++
	if f.FetchProfileFunc != nil {
		return f.FetchProfileFunc(ctx, token)
	}
	profile := f.DefaultProfile
	return &profile, nil
}

// MemoryStateStore is an in-memory StateStore for tests.
type MemoryStateStore struct {
	mu         sync.Mutex
	identities map[string]domainauth.SavedIdentity
	paths      map[string]string

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStateStore creates an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		identities: map[string]domainauth.SavedIdentity{},
		paths:      map[string]string{},
	}
}

func (s *MemoryStateStore) SaveIdentity(_ context.Context, sessionID string, ident domainauth.SavedIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if ident.IsZero() {
		return nil
	}
	s.identities[sessionID] = ident
	return nil
}

func (s *MemoryStateStore) Identity(_ context.Context, sessionID string) (domainauth.SavedIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return domainauth.SavedIdentity{}, false, s.Err
	}
	ident, ok := s.identities[sessionID]
	return ident, ok, nil
}

func (s *MemoryStateStore) ClearIdentity(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.identities, sessionID)
	return nil
}

func (s *MemoryStateStore) SaveOriginalPath(_ context.Context, sessionID, requestURI string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.paths[sessionID] = requestURI
	return nil
}

func (s *MemoryStateStore) TakeOriginalPath(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	path, ok := s.paths[sessionID]
	delete(s.paths, sessionID)
	return path, ok, nil
}

// SavedPath reports the stored original path without consuming it.
func (s *MemoryStateStore) SavedPath(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.paths[sessionID]
	return path, ok
}

// StubSecondaryAuthorizer returns fixed principals or a fixed error and
// records logouts.
type StubSecondaryAuthorizer struct {
	Principals []domainauth.Principal
	Err        error
	LogoutErr  error

	AuthorizeCalls int
	LogoutCalls    int
}

func (s *StubSecondaryAuthorizer) Authorize(_ context.Context, _ domainauth.UserProfile) ([]domainauth.Principal, error) {
	s.AuthorizeCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Principals, nil
}

func (s *StubSecondaryAuthorizer) Logout(context.Context) error {
	s.LogoutCalls++
	return s.LogoutErr
}
