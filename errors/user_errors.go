// api/errors/user_errors.go
package errors

import "errors"

var (
	ErrAdminUserNotFound    = errors.New("admin user not found")
	ErrInvalidAdminUserData = errors.New("invalid admin user data")
	ErrAdminUserConflict    = errors.New("admin user conflict")
	ErrInsufficientRole     = errors.New("admin role does not permit this operation")
)
