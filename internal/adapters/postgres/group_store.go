// Package postgres provides a secondary authorizer backed by a Postgres
// table of locally granted group memberships.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
	"github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/ports"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ ports.SecondaryAuthorizer = (*GroupStore)(nil)

// GroupStore looks up additional group names granted locally to the
// confirmed email. Every entry comes back as a principal whose name is the
// group, in the table's declared order.
//
// Any query failure here is a configuration problem of the local identity
// store, not a provider problem, and aborts the authentication attempt.
type GroupStore struct {
	db Querier
}

// NewGroupStore creates a GroupStore on the given pool.
func NewGroupStore(db Querier) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Authorize(ctx context.Context, profile domainauth.UserProfile) ([]domainauth.Principal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT group_name
		FROM login_groups
		WHERE email = $1
		ORDER BY position, group_name
	`, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("query login groups: %w", classify(err))
	}
	defer rows.Close()

	var principals []domainauth.Principal
	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, fmt.Errorf("scan login group: %w", scanErr)
		}
		principals = append(principals, domainauth.Principal{Name: name})
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("read login groups: %w", classify(rowsErr))
	}
	return principals, nil
}

func (s *GroupStore) Logout(context.Context) error { return nil }

// classify gives operators a clearer message for the common misconfiguration
// of a missing login_groups table.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("login store not provisioned (missing login_groups table): %w", err)
	}
	return err
}
