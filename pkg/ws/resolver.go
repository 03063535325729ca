package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/token"
)

// handshakeClaims is the payload of the signed handshake token issued by
// the platform when it renders a page that opens a realtime connection.
type handshakeClaims struct {
	UserID    string `json:"uid"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// HandshakeToken issues a signed token granting userID a realtime
// connection for the given ttl. A zero ttl issues a token without expiry,
// useful only for tests and local tooling.
func HandshakeToken(userID, secret string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", ErrMissingIdentity
	}
	claims := handshakeClaims{UserID: userID}
	if ttl != 0 {
		claims.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	return token.GenerateToken(claims, secret)
}

// TokenResolver resolves identity from the signed `token` query parameter.
// Browsers cannot set headers on websocket handshakes, so the token rides
// the query string.
func TokenResolver(secret string) IdentityResolver {
	return func(r *http.Request) (string, error) {
		raw := r.URL.Query().Get("token")
		if raw == "" {
			return "", ErrMissingToken
		}

		claims, err := token.ParseToken[handshakeClaims](raw, secret)
		if err != nil {
			return "", fmt.Errorf("parse handshake token: %w", err)
		}
		if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
			return "", ErrTokenExpired
		}
		if claims.UserID == "" {
			return "", ErrMissingIdentity
		}
		return claims.UserID, nil
	}
}
