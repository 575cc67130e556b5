package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxClaims ctxKey = iota
	ctxAccessToken
)

// WithSession stores the verified claims and the raw access credential on ctx.
func WithSession(ctx context.Context, claims Claims, accessToken string) context.Context {
	ctx = context.WithValue(ctx, ctxClaims, claims)
	ctx = context.WithValue(ctx, ctxAccessToken, accessToken)
	return ctx
}

func ClaimsFrom(ctx context.Context) (Claims, error) {
	if c, ok := ctx.Value(ctxClaims).(Claims); ok && c.UserID != "" {
		return c, nil
	}
	return Claims{}, errors.New("claims not in context")
}

func AccessTokenFrom(ctx context.Context) (string, error) {
	if s, ok := ctx.Value(ctxAccessToken).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("access token not in context")
}
