package domain

import "errors"

var (
	// ErrProvider covers any failure of the external identity flow,
	// including cancellation and blocked callbacks.
	ErrProvider = errors.New("failed to sign in with identity provider")
	// ErrNetworkUnavailable means the request never reached the backend.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrBackendRejected means the backend returned a non-2xx status with a
	// parseable reason.
	ErrBackendRejected = errors.New("backend rejected the request")
	// ErrMalformedResponse means the backend returned 2xx but the body was
	// missing required fields.
	ErrMalformedResponse = errors.New("malformed response from backend")
	// ErrSessionExpired is returned on an explicit 401 from an authenticated
	// call. It always carries a forced sign-out with it.
	ErrSessionExpired = errors.New("session expired, please sign in again")
	// ErrNotAuthenticated means an operation was attempted with no stored
	// credential.
	ErrNotAuthenticated = errors.New("no authentication token found")
)
