// api/errors/policy_errors.go
package errors

import "errors"

var (
	ErrAgentPolicyNotFound = errors.New("agent policy not found")
	ErrTeamPolicyNotFound  = errors.New("team policy not found")
	ErrInvalidPolicyData   = errors.New("invalid policy data")
	ErrPolicyConflict      = errors.New("policy conflict")

	ErrPolicyUnavailable = errors.New("policy unavailable")

	ErrDatabaseOperation     = errors.New("database operation failed")
	ErrInternalServer        = errors.New("internal server error")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidPagination     = errors.New("invalid pagination parameters")
	ErrInvalidSearchCriteria = errors.New("invalid search criteria")
	ErrRateLimited           = errors.New("rate limit exceeded")
)
