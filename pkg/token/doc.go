// Package token provides compact signed tokens carrying a JSON payload,
// used for the websocket handshake: the platform issues a short-lived token
// naming the user, and the ws endpoint verifies it before upgrading.
//
// Token format: base64url(payload).base64url(signature), where the
// signature is HMAC-SHA256 truncated to 8 bytes. That keeps tokens short
// while providing enough resistance for short-lived, low-value credentials;
// do not use it for long-lived or high-value tokens.
//
//	type claims struct {
//	    UserID    string `json:"uid"`
//	    ExpiresAt int64  `json:"exp"`
//	}
//
//	tok, err := token.GenerateToken(claims{"U1", exp}, secret)
//	c, err := token.ParseToken[claims](tok, secret)
//
// ParseToken returns ErrInvalidToken for malformed input and
// ErrSignatureInvalid when verification fails.
package token
