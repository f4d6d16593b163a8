// Package auth verifies bearer tokens and carries the caller's user ID
// through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AnonymousUser is the user ID used when authentication is disabled.
const AnonymousUser = "anonymous"

var (
	// ErrMissingToken is returned when no bearer token is present.
	ErrMissingToken = errors.New("missing or malformed Authorization header")
	// ErrInvalidToken is returned when the token fails verification.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier checks HS256 tokens and extracts the subject as user ID.
// A Verifier with an empty secret accepts every request as AnonymousUser.
type Verifier struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewVerifier creates a verifier. issuer is optional.
func NewVerifier(secret, issuer string) *Verifier {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), opts: opts}
}

// Enabled reports whether tokens are checked.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify parses tokenStr and returns its subject.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return sub, nil
}

// Authenticate reads the bearer token from r and returns the user ID.
func (v *Verifier) Authenticate(r *http.Request) (string, error) {
	if !v.Enabled() {
		return AnonymousUser, nil
	}
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrMissingToken
	}
	return v.Verify(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
}

type contextKey struct{}

// WithUserID returns a context carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the user ID stored in ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
