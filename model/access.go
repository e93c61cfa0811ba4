// api/model/access.go
package model

import "time"

// RevokedToken is a jti blocklist entry. Duplicate revocations are
// idempotent; a row is only safe to sweep once expires_at has passed.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenClaims is the decoded payload of a bearer token issued by the
// Token Signer (§4.D).
type TokenClaims struct {
	Subject   string `json:"sub"`
	JTI       string `json:"jti"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Type      string `json:"type"` // "agent" or "admin"
	Env       string `json:"env,omitempty"`
	Team      string `json:"team,omitempty"`
	Role      string `json:"role,omitempty"`
}
