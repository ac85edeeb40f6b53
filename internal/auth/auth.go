// Package auth verifies bearer tokens and carries the caller's family through
// the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoFamily     = errors.New("token has no family_id claim")
)

// Claims is the token payload. Email or Subject identifies the member.
type Claims struct {
	FamilyID string `json:"family_id"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity is who is calling and which household they act for.
type Identity struct {
	FamilyID string
	Member   string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// FamilyID returns the family scoping the request, or "" outside an authenticated request.
func FamilyID(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.FamilyID
}

// AddedBy returns the member recorded on transactions created by this request.
func AddedBy(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.Member
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a verifier; an empty issuer disables the issuer check.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	if claims.FamilyID == "" {
		return Identity{}, ErrNoFamily
	}

	member := claims.Email
	if member == "" {
		member = claims.Subject
	}

	return Identity{FamilyID: claims.FamilyID, Member: member}, nil
}

// Issue signs a token for id that expires after ttl. A zero ttl never expires.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	claims := Claims{
		FamilyID: id.FamilyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.Member,
			Issuer:   v.issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	if strings.Contains(id.Member, "@") {
		claims.Email = id.Member
	}

	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Middleware rejects requests without a valid bearer token.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err == nil {
			var id Identity

			id, err = v.Verify(token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
				return
			}
		}

		slog.Debug("rejected request", "path", r.URL.Path, "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// Fixed authenticates every request as id. Used when no JWT secret is configured.
func Fixed(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	return strings.TrimSpace(token), nil
}
