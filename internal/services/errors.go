package services

import "errors"

// Service-level sentinel errors. Handlers translate these to HTTP status
// codes; none of them leak which specific check failed beyond their own
// message.
var (
	// ErrValidation wraps any bad-input failure. The wrapped message says
	// what was wrong with the input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, so login failures carry no account-enumeration signal.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when no valid session accompanies a
	// request that needs one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when an authenticated user targets a post
	// they do not own. It reveals nothing about the actual owner.
	ErrForbidden = errors.New("not authorized")

	// ErrMailDelivery marks a failed mail dispatch. The triggering record
	// is already committed when this is returned.
	ErrMailDelivery = errors.New("mail delivery failed")
)
