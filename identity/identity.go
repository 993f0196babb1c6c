// Package identity resolves the authenticated subject carried on a
// request's auth cookie. Resolution is best-effort: any failure yields
// an anonymous result, never a rejected connection.
package identity

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// Resolver verifies the signed token stored under a named cookie.
type Resolver struct {
	cookieName string
	secret     []byte
}

func NewResolver(cookieName string, secret []byte) *Resolver {
	return &Resolver{cookieName: cookieName, secret: secret}
}

type claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Resolve returns the subject id carried on the request's auth cookie,
// or "" when the cookie is missing or the token does not verify.
func (r *Resolver) Resolve(req *http.Request) string {
	c, err := req.Cookie(r.cookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	return r.ResolveToken(c.Value)
}

// ResolveToken verifies a raw token string. A valid, unexpired HS256
// signature yields the embedded subject id; anything else yields "".
func (r *Resolver) ResolveToken(token string) string {
	var cl claims
	tok, err := jwt.ParseWithClaims(token, &cl, r.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		slog.Debug("identity resolution failed, continuing anonymous", "error", err)
		return ""
	}
	if cl.UserID != "" {
		return cl.UserID
	}
	return cl.Subject
}

func (r *Resolver) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return r.secret, nil
}
