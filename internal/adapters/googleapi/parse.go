package googleapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/phillipgreenii/google-oauth-2.0-serverauthmodule/internal/domain/auth"
)

// The two Google responses this package consumes are single-level objects
// with scalar values only, so a full JSON parser buys nothing here. This
// decoder handles exactly that shape and nothing more: no nesting, no
// arrays, no escaped quotes inside values.

var (
	// ErrMalformedResponse is returned when a provider response body
	// cannot be decoded as a flat object.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrInvalidInteger is returned when a numeric field of a provider
	// response does not parse as an integer.
	ErrInvalidInteger = errors.New("invalid integer in provider response")
)

// flatObject maps keys of a single-level JSON object to their values,
// preserved as text.
type flatObject map[string]string

// parseFlatObject decodes a single-level object. Input without a brace pair,
// or with a field missing its ':' separator, fails with ErrMalformedResponse;
// callers must not attempt partial recovery.
func parseFlatObject(s string) (flatObject, error) {
	open := strings.Index(s, "{")
	close := strings.LastIndex(s, "}")
	if open < 0 || close < open {
		return nil, fmt.Errorf("%w: no object braces", ErrMalformedResponse)
	}

	values := flatObject{}
	for _, part := range strings.Split(s[open+1:close], ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, found := strings.Cut(strings.ReplaceAll(part, `"`, ""), ":")
		if !found {
			return nil, fmt.Errorf("%w: field %q has no separator", ErrMalformedResponse, strings.TrimSpace(part))
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return values, nil
}

// bool parses the value under key as a boolean; absent or unparseable values
// yield false.
func (o flatObject) bool(key string) bool {
	v, err := strconv.ParseBool(o[key])
	return err == nil && v
}

// parseAccessToken decodes a token-exchange response. The expiry is computed
// from the decode time plus the response's expires_in seconds.
func parseAccessToken(body string, now time.Time) (*domainauth.AccessToken, error) {
	values, err := parseFlatObject(body)
	if err != nil {
		return nil, err
	}

	expiresIn, err := strconv.Atoi(values["expires_in"])
	if err != nil {
		return nil, fmt.Errorf("%w: expires_in %q", ErrInvalidInteger, values["expires_in"])
	}

	return &domainauth.AccessToken{
		Token:  values["access_token"],
		Expiry: now.Add(time.Duration(expiresIn) * time.Second),
		Type:   values["token_type"],
	}, nil
}

// parseUserProfile decodes a userinfo response. Any field may be absent;
// verified_email defaults to false.
func parseUserProfile(body string) (*domainauth.UserProfile, error) {
	values, err := parseFlatObject(body)
	if err != nil {
		return nil, err
	}

	return &domainauth.UserProfile{
		ID:            values["id"],
		Email:         values["email"],
		VerifiedEmail: values.bool("verified_email"),
		Name:          values["name"],
		GivenName:     values["given_name"],
		FamilyName:    values["family_name"],
		Gender:        values["gender"],
		Link:          values["link"],
		Picture:       values["picture"],
		Locale:        values["locale"],
	}, nil
}
