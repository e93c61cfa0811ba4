package errors

import "errors"

var (
	ErrApprovalNotFound    = errors.New("approval request not found")
	ErrApprovalConflict    = errors.New("approval request conflict")
	ErrInvalidApprovalData = errors.New("invalid approval request data")
	ErrApprovalNotPending  = errors.New("approval request is not pending")

	ErrRevocationWriteFailed = errors.New("failed to record token revocation")
)
