package credentials

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// tokenSource adapts a Provider to the standard bearer interface
type tokenSource struct {
	provider Provider
	role     string
}

// Token implements oauth2.TokenSource. A missing token yields an empty
// bearer rather than an error; the server is the enforcement point.
func (s tokenSource) Token() (*oauth2.Token, error) {
	token, err := s.provider.Token(s.role)
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return &oauth2.Token{}, nil
		}
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// TokenSource wraps the stored token for role as an oauth2.TokenSource so it
// can plug into any client that speaks the standard bearer interface. The
// provider is consulted on every call, so a token saved after construction
// (login) is picked up without rebuilding the source.
func TokenSource(p Provider, role string) oauth2.TokenSource {
	return tokenSource{provider: p, role: role}
}

// ExpiresAt peeks at the exp claim of a stored JWT without verifying its
// signature (the client has no key material; verification is the server's
// job). Returns the zero time when the token is not a JWT or carries no exp.
func ExpiresAt(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Expired reports whether a stored JWT is past its exp claim. Tokens without
// a readable exp are never reported as expired.
func Expired(token string, now time.Time) bool {
	exp := ExpiresAt(token)
	if exp.IsZero() {
		return false
	}
	return now.After(exp)
}
