// api/errors/token_errors.go
package errors

import "errors"

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrKeyNotFound   = errors.New("signing key not found")
	ErrInvalidIssuer = errors.New("invalid token issuer")
)
