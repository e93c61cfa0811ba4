// api/errors/org_errors.go
package errors

import "errors"

var (
	ErrAgentNotFound      = errors.New("agent not found")
	ErrAgentConflict      = errors.New("agent conflict")
	ErrInvalidAgentData   = errors.New("invalid agent data")
	ErrCredentialNotFound = errors.New("agent credential not found")
	ErrCredentialConflict = errors.New("agent credential conflict")
	ErrInvalidCredential  = errors.New("invalid agent credential")
)
