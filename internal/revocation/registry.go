// Package revocation tracks credentials invalidated before their natural
// expiry. Entries are held until the embedded expiry passes and are then
// evicted by a sweep.
package revocation

import (
	"context"
	"errors"
	"time"
)

// Threshold is the size above which Revoke sweeps synchronously before
// returning, bounding memory across many logouts.
const Threshold = 1000

// ErrUnavailable wraps backend I/O failures.
var ErrUnavailable = errors.New("revocation: backend unavailable")

// ExpiryFunc returns the expiry embedded in a raw credential without
// verifying it. false means the credential cannot be decoded.
type ExpiryFunc func(token string) (time.Time, bool)

// Registry is implemented by every backend.
type Registry interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	// Sweep removes entries whose expiry is at or before now, and entries
	// that cannot be decoded. It returns how many were removed.
	Sweep(ctx context.Context) (int, error)
	Size(ctx context.Context) (int, error)
}
