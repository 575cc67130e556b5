package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"municipal-docs/internal/config"
	"municipal-docs/internal/rbac"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		Issuer:          "municipal-docs",
		Audience:        "municipal-docs-web",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testAuthConfig())
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

var testNow = time.Unix(1700000000, 0).UTC()

func TestNewCodec_RejectsSharedSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	if _, err := NewCodec(cfg); err == nil {
		t.Fatalf("expected error for shared secret")
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	cases := []struct {
		name string
		p    Principal
		typ  TokenType
	}{
		{"access", Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleSecretaryCAM}, TokenTypeAccess},
		{"access admin", Principal{UserID: "u2", Email: "admin@b.com", Role: rbac.RoleAdministrator}, TokenTypeAccess},
		{"refresh", Principal{UserID: "u1", Email: "a@b.com"}, TokenTypeRefresh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := c.Issue(tc.p, tc.typ, time.Minute, testNow)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			claims, err := c.Verify(tok, tc.typ, testNow.Add(59*time.Second))
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if claims.Principal != tc.p {
				t.Fatalf("expected %+v, got %+v", tc.p, claims.Principal)
			}
			if claims.Issuer != "municipal-docs" || claims.ID == "" {
				t.Fatalf("expected iss and jti, got %+v", claims.RegisteredClaims)
			}
		})
	}
}

func TestCodec_DistinctTokensSameSecond(t *testing.T) {
	c := newTestCodec(t)
	p := Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleIntendant}
	a, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)
	b, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)
	if a == b {
		t.Fatalf("expected distinct credentials")
	}
}

func TestCodec_ExpiryIsFinal(t *testing.T) {
	c := newTestCodec(t)
	tok, err := c.Issue(Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RolePresident}, TokenTypeAccess, time.Minute, testNow)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, after := range []time.Duration{time.Minute, time.Minute + time.Second, time.Hour, 365 * 24 * time.Hour} {
		_, err := c.Verify(tok, TokenTypeAccess, testNow.Add(after))
		if !errors.Is(err, ErrExpiredCredential) {
			t.Fatalf("expected expired at +%v, got %v", after, err)
		}
	}
}

func TestCodec_CrossTypeRejected(t *testing.T) {
	c := newTestCodec(t)
	p := Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleSecretaryCF}

	access, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)
	refresh, _ := c.Issue(p.Reduced(), TokenTypeRefresh, time.Hour, testNow)

	if _, err := c.Verify(access, TokenTypeRefresh, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for access as refresh, got %v", err)
	}
	if _, err := c.Verify(refresh, TokenTypeAccess, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for refresh as access, got %v", err)
	}
}

func TestCodec_TamperedSignature(t *testing.T) {
	c := newTestCodec(t)
	tok, _ := c.Issue(Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleIntendant}, TokenTypeAccess, time.Minute, testNow)

	parts := strings.Split(tok, ".")
	forged, _ := c.Issue(Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleAdministrator}, TokenTypeAccess, time.Minute, testNow)
	fparts := strings.Split(forged, ".")
	spliced := fparts[0] + "." + fparts[1] + "." + parts[2]

	if _, err := c.Verify(spliced, TokenTypeAccess, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for spliced payload, got %v", err)
	}
	if _, err := c.Verify("not-a-jwt", TokenTypeAccess, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for garbage, got %v", err)
	}
}

func TestCodec_IssuerAudienceMismatch(t *testing.T) {
	c := newTestCodec(t)
	cfg := testAuthConfig()
	cfg.Audience = "other-app"
	other, err := NewCodec(cfg)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	tok, _ := other.Issue(Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleIntendant}, TokenTypeAccess, time.Minute, testNow)
	if _, err := c.Verify(tok, TokenTypeAccess, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for audience mismatch, got %v", err)
	}
}

func TestCodec_IssueRejectsMalformedPrincipal(t *testing.T) {
	c := newTestCodec(t)
	cases := []struct {
		name string
		p    Principal
		typ  TokenType
	}{
		{"missing user", Principal{Email: "a@b.com", Role: rbac.RoleIntendant}, TokenTypeAccess},
		{"missing email on refresh", Principal{UserID: "u1"}, TokenTypeRefresh},
		{"unknown role", Principal{UserID: "u1", Email: "a@b.com", Role: "mayor"}, TokenTypeAccess},
		{"access without role", Principal{UserID: "u1", Email: "a@b.com"}, TokenTypeAccess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Issue(tc.p, tc.typ, time.Minute, testNow); !errors.Is(err, ErrSigning) {
				t.Fatalf("expected signing error, got %v", err)
			}
		})
	}
}

func TestCodec_RotateSecretInvalidatesKind(t *testing.T) {
	c := newTestCodec(t)
	p := Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleIntendant}
	access, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)
	refresh, _ := c.Issue(p.Reduced(), TokenTypeRefresh, time.Hour, testNow)

	if err := c.RotateSecret(TokenTypeAccess, "refresh-secret"); err == nil {
		t.Fatalf("expected error when reusing the other secret")
	}
	if err := c.RotateSecret(TokenTypeAccess, "new-access-secret"); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if _, err := c.Verify(access, TokenTypeAccess, testNow); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected old access credential rejected, got %v", err)
	}
	if _, err := c.Verify(refresh, TokenTypeRefresh, testNow); err != nil {
		t.Fatalf("expected refresh unaffected, got %v", err)
	}
}

func TestCodec_PeekAndDecodeUnsafe(t *testing.T) {
	c := newTestCodec(t)
	p := Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleVicePresident}
	tok, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)

	exp, ok := c.PeekExpiry(tok)
	if !ok || !exp.Equal(testNow.Add(time.Minute)) {
		t.Fatalf("unexpected expiry %v ok=%v", exp, ok)
	}

	// An expired credential still decodes.
	claims, ok := c.DecodeUnsafe(tok)
	if !ok || claims.Principal != p {
		t.Fatalf("unexpected decode %+v ok=%v", claims, ok)
	}

	if _, ok := c.PeekExpiry("garbage"); ok {
		t.Fatalf("expected peek failure on garbage")
	}
	if _, ok := c.DecodeUnsafe(""); ok {
		t.Fatalf("expected decode failure on empty string")
	}
}

func TestCodec_AuthenticIgnoresExpiryOnly(t *testing.T) {
	c := newTestCodec(t)
	p := Principal{UserID: "u1", Email: "a@b.com", Role: rbac.RoleIntendant}
	tok, _ := c.Issue(p, TokenTypeAccess, time.Minute, testNow)

	// Long past expiry the signature still proves where it came from.
	claims, err := c.Authentic(tok, TokenTypeAccess)
	if err != nil || claims.Principal != p {
		t.Fatalf("expected authentic expired credential, got %+v err=%v", claims.Principal, err)
	}

	if _, err := c.Authentic(tok, TokenTypeRefresh); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for wrong kind, got %v", err)
	}

	cfg := testAuthConfig()
	cfg.Audience = "other-app"
	other, _ := NewCodec(cfg)
	foreign, _ := other.Issue(p, TokenTypeAccess, time.Minute, testNow)
	if _, err := c.Authentic(foreign, TokenTypeAccess); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for audience mismatch, got %v", err)
	}

	parts := strings.Split(tok, ".")
	if _, err := c.Authentic(parts[0]+"."+parts[1]+".AAAA", TokenTypeAccess); !errors.Is(err, ErrMalformedCredential) {
		t.Fatalf("expected malformed for bad signature, got %v", err)
	}
}
