package auth

import "errors"

// ErrConfiguration marks a secondary-authorization failure caused by a
// misconfigured local backend. It is distinct from provider errors so
// operators can tell "the provider worked but local policy rejected it"
// apart from "the provider call failed".
var ErrConfiguration = errors.New("authentication configuration error")
