package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Services and
// handlers match on these with errors.Is rather than on message text.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSlug is returned when a post create or update would leave
	// two posts holding the same slug. The database unique index is the
	// final arbiter; a pre-check race still surfaces as this error.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrDuplicateEmail is returned when registering with an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
