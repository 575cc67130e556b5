package auth

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"municipal-docs/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec signs, verifies and decodes credentials. Verification is stateless:
// signature, iss, aud and exp are all checked from the token itself.
type Codec struct {
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.RWMutex
	secrets map[TokenType][]byte
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, errors.New("auth: token TTLs must be positive")
	}

	return &Codec{
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		secrets: map[TokenType][]byte{
			TokenTypeAccess:  []byte(cfg.AccessSecret),
			TokenTypeRefresh: []byte(cfg.RefreshSecret),
		},
	}, nil
}

// TTL returns the configured lifetime for typ.
func (c *Codec) TTL(typ TokenType) time.Duration {
	if typ == TokenTypeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// RotateSecret replaces the signing secret for typ. Every credential of that
// type issued under the old secret stops verifying immediately.
func (c *Codec) RotateSecret(typ TokenType, secret string) error {
	if typ != TokenTypeAccess && typ != TokenTypeRefresh {
		return fmt.Errorf("auth: unknown token type %q", typ)
	}
	if secret == "" {
		return errors.New("auth: secret is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for other, s := range c.secrets {
		if other != typ && string(s) == secret {
			return errors.New("auth: access and refresh secrets must differ")
		}
	}
	c.secrets[typ] = []byte(secret)
	return nil
}

func (c *Codec) secret(typ TokenType) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.secrets[typ]
	return s, ok
}

// Issue signs p as a credential of type typ valid for ttl from now.
func (c *Codec) Issue(p Principal, typ TokenType, ttl time.Duration, now time.Time) (string, error) {
	if err := validatePrincipal(p, typ); err != nil {
		return "", wrap(ErrSigning, err)
	}
	if ttl <= 0 {
		return "", wrap(ErrSigning, errors.New("ttl must be positive"))
	}
	secret, ok := c.secret(typ)
	if !ok {
		return "", wrap(ErrSigning, fmt.Errorf("unknown token type %q", typ))
	}

	claims := Claims{
		Principal: p,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.UserID,
			Audience:  audienceOrNil(c.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", wrap(ErrSigning, err)
	}
	return signed, nil
}

// Verify checks signature, issuer, audience and expiry against the secret
// bound to expected. A credential of the other type fails as malformed.
func (c *Codec) Verify(token string, expected TokenType, now time.Time) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}
	return c.parse(token, expected, opts...)
}

// Authentic checks signature, issuer, audience and type but not expiry.
// Only credentials this codec signed may reach the revocation registry.
func (c *Codec) Authentic(token string, expected TokenType) (Claims, error) {
	claims, err := c.parse(token, expected, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, err
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, wrap(ErrMalformedCredential, errors.New("issuer mismatch"))
	}
	if c.audience != "" && !slices.Contains(claims.Audience, c.audience) {
		return Claims{}, wrap(ErrMalformedCredential, errors.New("audience mismatch"))
	}
	return claims, nil
}

func (c *Codec) parse(token string, expected TokenType, extra ...jwt.ParserOption) (Claims, error) {
	secret, ok := c.secret(expected)
	if !ok {
		return Claims{}, wrap(ErrMalformedCredential, fmt.Errorf("unknown token type %q", expected))
	}

	opts := append([]jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}, extra...)

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Claims{}, wrap(ErrExpiredCredential, err)
		}
		return Claims{}, wrap(ErrMalformedCredential, err)
	}

	if claims.TokenType != expected {
		return Claims{}, wrap(ErrMalformedCredential, errors.New("token_type mismatch"))
	}
	if err := validatePrincipal(claims.Principal, expected); err != nil {
		return Claims{}, wrap(ErrMalformedCredential, err)
	}
	return claims, nil
}

// DecodeUnsafe extracts claims without checking signature or expiry.
// For diagnostics only; never authorize on its result.
func (c *Codec) DecodeUnsafe(token string) (Claims, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, false
	}
	return claims, true
}

// PeekExpiry returns the embedded expiry without verifying the signature.
// false means the token could not be decoded; treat it as expired.
func (c *Codec) PeekExpiry(token string) (time.Time, bool) {
	claims, ok := c.DecodeUnsafe(token)
	if !ok || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func validatePrincipal(p Principal, typ TokenType) error {
	if p.UserID == "" {
		return errors.New("user id missing")
	}
	if p.Email == "" {
		return errors.New("email missing")
	}
	switch typ {
	case TokenTypeAccess:
		if !p.Role.Valid() {
			return fmt.Errorf("role %q is not enumerated", p.Role)
		}
	case TokenTypeRefresh:
		if p.Role != "" && !p.Role.Valid() {
			return fmt.Errorf("role %q is not enumerated", p.Role)
		}
	default:
		return fmt.Errorf("unknown token type %q", typ)
	}
	return nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
