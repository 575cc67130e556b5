package auth

import (
	"context"
	"errors"
	"time"

	"municipal-docs/internal/metrics"
	"municipal-docs/pkg/logger"
)

// Revocations is the registry contract the session manager depends on.
// Implementations live in internal/revocation.
type Revocations interface {
	Revoke(ctx context.Context, token string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Size(ctx context.Context) (int, error)
}

// PrincipalSource re-resolves the current principal for a user when a
// refresh credential, which carries no role, is exchanged. Unknown or
// disabled users must be reported with an error wrapping ErrPrincipalGone;
// any other error is treated as the source being unavailable.
type PrincipalSource interface {
	Principal(ctx context.Context, userID string) (Principal, error)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
}

type Stats struct {
	BlacklistedCount int           `json:"blacklisted_count"`
	AccessTTL        time.Duration `json:"access_ttl"`
	RefreshTTL       time.Duration `json:"refresh_ttl"`
}

// Manager is the session lifecycle facade: the only auth entry point the
// rest of the application calls.
type Manager struct {
	codec       *Codec
	revocations Revocations
	principals  PrincipalSource

	Metrics *metrics.Metrics
	Now     func() time.Time
}

func NewManager(codec *Codec, revocations Revocations, principals PrincipalSource) (*Manager, error) {
	if codec == nil {
		return nil, errors.New("auth: codec is required")
	}
	if revocations == nil {
		return nil, errors.New("auth: revocation registry is required")
	}
	if principals == nil {
		return nil, errors.New("auth: principal source is required")
	}
	return &Manager{codec: codec, revocations: revocations, principals: principals, Now: time.Now}, nil
}

func (m *Manager) Codec() *Codec { return m.codec }

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// IssuePair signs an access credential for p and a refresh credential for
// its reduced form.
func (m *Manager) IssuePair(p Principal) (TokenPair, error) {
	now := m.now()
	accessTTL := m.codec.TTL(TokenTypeAccess)

	access, err := m.codec.Issue(p, TokenTypeAccess, accessTTL, now)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.codec.Issue(p.Reduced(), TokenTypeRefresh, m.codec.TTL(TokenTypeRefresh), now)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, AccessTTL: accessTTL}, nil
}

// Authenticate is the choke point every protected request passes through.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (Claims, error) {
	claims, err := m.check(ctx, accessToken, TokenTypeAccess)
	m.observe(ctx, "authenticate", err)
	return claims, err
}

// Refresh exchanges a refresh credential for a new pair. The presented
// refresh credential stays valid until it expires or is logged out.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.check(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		m.observe(ctx, "refresh", err)
		return TokenPair{}, err
	}

	current, err := m.principals.Principal(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrPrincipalGone) {
			err = wrap(ErrRevokedCredential, err)
		} else {
			err = wrap(ErrPrincipalUnavailable, err)
		}
		m.observe(ctx, "refresh", err)
		return TokenPair{}, err
	}
	if current.UserID != claims.UserID {
		err = wrap(ErrMalformedCredential, errors.New("principal mismatch"))
		m.observe(ctx, "refresh", err)
		return TokenPair{}, err
	}

	pair, err := m.IssuePair(current)
	m.observe(ctx, "refresh", err)
	return pair, err
}

// Logout revokes both. Empty strings, credentials this codec did not sign
// and credentials already past expiry are skipped, so every registry entry
// carries a trusted exp.
func (m *Manager) Logout(ctx context.Context, accessToken, refreshToken string) error {
	now := m.now()
	var errs []error
	for _, cred := range []struct {
		token string
		typ   TokenType
	}{
		{accessToken, TokenTypeAccess},
		{refreshToken, TokenTypeRefresh},
	} {
		if cred.token == "" {
			continue
		}
		claims, err := m.codec.Authentic(cred.token, cred.typ)
		if err != nil {
			m.observe(ctx, "logout", err)
			continue
		}
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(now) {
			continue
		}
		if err := m.revocations.Revoke(ctx, cred.token); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return wrap(ErrRevocationUnavailable, errors.Join(errs...))
	}
	return nil
}

func (m *Manager) RegistrySize(ctx context.Context) (int, error) {
	return m.revocations.Size(ctx)
}

func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	n, err := m.revocations.Size(ctx)
	if err != nil {
		return Stats{}, wrap(ErrRevocationUnavailable, err)
	}
	return Stats{
		BlacklistedCount: n,
		AccessTTL:        m.codec.TTL(TokenTypeAccess),
		RefreshTTL:       m.codec.TTL(TokenTypeRefresh),
	}, nil
}

func (m *Manager) check(ctx context.Context, token string, typ TokenType) (Claims, error) {
	claims, err := m.codec.Verify(token, typ, m.now())
	if err != nil {
		return Claims{}, err
	}
	revoked, err := m.revocations.IsRevoked(ctx, token)
	if err != nil {
		return Claims{}, wrap(ErrRevocationUnavailable, err)
	}
	if revoked {
		return Claims{}, ErrRevokedCredential
	}
	return claims, nil
}

func (m *Manager) observe(ctx context.Context, op string, err error) {
	kind := Kind(err)
	m.Metrics.ObserveCredential(op, kind)
	if err != nil {
		logger.From(ctx).Warn("credential rejected", "operation", op, "kind", kind)
	}
}
