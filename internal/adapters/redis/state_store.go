// Package redis provides the Redis-backed session state store for the
// authentication gate.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

// Key prefixes namespace gate state away from unrelated session data.
const (
	identityKeyPrefix     = "oauthgate:identity:"
	originalPathKeyPrefix = "oauthgate:original_path:"
)

// Defaults applied when the corresponding option is zero.
const (
	DefaultIdentityTTL     = 8 * time.Hour
	DefaultOriginalPathTTL = 10 * time.Minute
)

var _ ports.StateStore = (*StateStore)(nil)

// StateStore persists gate state in Redis. The identity slot lives for
// IdentityTTL; the original-path slot is short-lived since it only needs to
// survive one provider round-trip.
type StateStore struct {
	client          redis.UniversalClient
	identityTTL     time.Duration
	originalPathTTL time.Duration
}

// StateStoreOptions configures a StateStore.
type StateStoreOptions struct {
	IdentityTTL     time.Duration
	OriginalPathTTL time.Duration
}

// NewStateStore creates a Redis-backed state store with default TTLs.
func NewStateStore(client redis.UniversalClient) *StateStore {
	return NewStateStoreWithOptions(client, StateStoreOptions{})
}

// NewStateStoreWithOptions creates a Redis-backed state store with custom TTLs.
func NewStateStoreWithOptions(client redis.UniversalClient, opts StateStoreOptions) *StateStore {
	identityTTL := opts.IdentityTTL
	if identityTTL <= 0 {
		identityTTL = DefaultIdentityTTL
	}
	originalPathTTL := opts.OriginalPathTTL
	if originalPathTTL <= 0 {
		originalPathTTL = DefaultOriginalPathTTL
	}
	return &StateStore{
		client:          client,
		identityTTL:     identityTTL,
		originalPathTTL: originalPathTTL,
	}
}

// SaveIdentity writes the established identity for the session. A zero
// identity is a no-op.
func (s *StateStore) SaveIdentity(ctx context.Context, sessionID string, ident domainauth.SavedIdentity) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if ident.IsZero() {
		return nil
	}

	data, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	return s.client.Set(ctx, identityKeyPrefix+sessionID, data, s.identityTTL).Err()
}

// Identity reads the saved identity without clearing it.
func (s *StateStore) Identity(ctx context.Context, sessionID string) (domainauth.SavedIdentity, bool, error) {
	if sessionID == "" {
		return domainauth.SavedIdentity{}, false, nil
	}

	data, err := s.client.Get(ctx, identityKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.SavedIdentity{}, false, nil
		}
		return domainauth.SavedIdentity{}, false, fmt.Errorf("redis get identity: %w", err)
	}

	var ident domainauth.SavedIdentity
	if unmarshalErr := json.Unmarshal([]byte(data), &ident); unmarshalErr != nil {
		return domainauth.SavedIdentity{}, false, fmt.Errorf("unmarshal identity: %w", unmarshalErr)
	}
	return ident, true, nil
}

// ClearIdentity removes the saved identity for the session.
func (s *StateStore) ClearIdentity(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, identityKeyPrefix+sessionID).Err()
}

// SaveOriginalPath records the request URI to resume after the provider
// round-trip.
func (s *StateStore) SaveOriginalPath(ctx context.Context, sessionID, requestURI string) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	return s.client.Set(ctx, originalPathKeyPrefix+sessionID, requestURI, s.originalPathTTL).Err()
}

// TakeOriginalPath reads and clears the saved request URI atomically via
// GETDEL, so the same value is never returned twice.
func (s *StateStore) TakeOriginalPath(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}

	path, err := s.client.GetDel(ctx, originalPathKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis getdel original path: %w", err)
	}
	return path, true, nil
}
