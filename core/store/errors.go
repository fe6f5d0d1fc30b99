package store

import "errors"

// ErrTokenNotFound covers both a missing and an already-used token. The two
// cases are deliberately indistinguishable to callers so the public surface
// can answer "invalid or expired" without leaking internal state.
var ErrTokenNotFound = errors.New("token not found or already used")

// ErrRequestNotFound is returned for an unknown request ID.
var ErrRequestNotFound = errors.New("request not found")

// ErrDonorNotFound is returned for an unknown donor ID.
var ErrDonorNotFound = errors.New("donor not found")

// ErrUnavailable signals a degraded storage layer. Operations fail cleanly
// per call rather than crashing the process; retrying is the caller's call.
var ErrUnavailable = errors.New("store unavailable")
