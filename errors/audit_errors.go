// api/errors/audit_errors.go
package errors

import "errors"

var (
	ErrAuditWriteFailed = errors.New("audit write failed")
	ErrAuditSerializer  = errors.New("could not acquire per-agent audit serializer")
)
