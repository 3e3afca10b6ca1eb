package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a session ID absent from the journal.
var ErrNotFound = errors.New("session not found")

// ErrStoreUnavailable reports that the backing store could not be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store persists the session journal.
//
// Append writes a new record. End marks an existing record ended at the
// given time; ending an already-ended session is a no-op, ending an unknown
// one returns ErrNotFound. ListByIdentity returns an identity's recorded
// sessions ordered by start time.
type Store interface {
	Append(ctx context.Context, sess Session) error
	End(ctx context.Context, sessionID string, at time.Time) error
	Get(ctx context.Context, sessionID string) (Session, error)
	ListByIdentity(ctx context.Context, identityID string) ([]Session, error)
}
