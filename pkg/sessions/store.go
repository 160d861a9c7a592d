// Package sessions provides the server-side half of session management:
// a store binding an opaque session id to the authenticated user's email
// for a bounded lifetime. A session token only authenticates while its id
// is present here, which is what makes logout revocation work.
package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned by Get when the id is absent or expired.
var ErrNoSession = errors.New("session not found")

// Store maps a session id to the bound user email.
type Store interface {
	// Put binds id to email for ttl.
	Put(ctx context.Context, id, email string, ttl time.Duration) error
	// Get returns the email bound to id, or ErrNoSession.
	Get(ctx context.Context, id string) (string, error)
	// Delete removes id. Deleting an absent id is a no-op, not an error.
	Delete(ctx context.Context, id string) error
}
