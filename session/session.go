// Package session supplies the bearer token attached to content API
// requests. Components receive a Provider instead of reading ambient state,
// so tests can substitute a fixed token.
package session

import (
	"context"
	"errors"
	"time"
)

var nowFunc = time.Now

var (
	ErrNoSession = errors.New("no session, run `spotminify session login` or set SPOTMINIFY_TOKEN")
	ErrExpired   = errors.New("session token has expired")
)

type Provider interface {
	// Token returns the current bearer token. An empty token with a nil
	// error means requests go out unauthenticated.
	Token(ctx context.Context) (string, error)
}

type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static always returns the same token, checking its expiry on every call.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	return checkExpiry(string(s), nowFunc())
}

// Anonymous never attaches a token.
var Anonymous Provider = ProviderFunc(func(context.Context) (string, error) { return "", nil })

// FromConfig prefers an explicit token (usually from the environment) over
// the token file.
func FromConfig(token, tokenFile string) Provider {
	if len(token) > 0 {
		return Static(token)
	}

	return NewFile(tokenFile)
}

func checkExpiry(token string, now time.Time) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}

	exp, err := ExpiresAt(token)
	if nil != err {
		// Opaque tokens carry no expiry the client can inspect.
		return token, nil //nolint:nilerr
	}

	if !exp.IsZero() && !now.Before(exp) {
		return "", ErrExpired
	}

	return token, nil
}
