package auth

import (
	"errors"
	"fmt"
)

// Credential failures. All four are terminal for the request; the HTTP
// boundary answers every one of them with the same 401.
var (
	ErrExpiredCredential   = errors.New("auth: credential expired")
	ErrMalformedCredential = errors.New("auth: credential malformed")
	ErrRevokedCredential   = errors.New("auth: credential revoked")
	ErrSigning             = errors.New("auth: cannot sign credential")
)

// ErrRevocationUnavailable means the registry could not be consulted.
// Authenticate fails closed on it.
var ErrRevocationUnavailable = errors.New("auth: revocation registry unavailable")

// ErrPrincipalGone is returned by a PrincipalSource for users that no longer
// exist or are disabled. Refresh reports it as a revoked credential.
var ErrPrincipalGone = errors.New("auth: principal no longer active")

// ErrPrincipalUnavailable means the principal source failed for any other
// reason during refresh.
var ErrPrincipalUnavailable = errors.New("auth: principal source unavailable")

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Kind returns a short label for logs and metrics. It never goes to clients.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpiredCredential):
		return "expired"
	case errors.Is(err, ErrRevokedCredential):
		return "revoked"
	case errors.Is(err, ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ErrSigning):
		return "signing"
	case errors.Is(err, ErrRevocationUnavailable):
		return "revocation_unavailable"
	case errors.Is(err, ErrPrincipalUnavailable):
		return "principal_unavailable"
	default:
		return "error"
	}
}
