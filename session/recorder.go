package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Recorder appends login sessions to a Store, owning ID allocation and
// start timestamps so stores only ever see complete records.
type Recorder struct {
	store Store
}

// NewRecorder returns a Recorder writing to store.
func NewRecorder(store Store) (*Recorder, error) {
	if store == nil {
		return nil, errors.New("recorder requires a session store")
	}
	return &Recorder{store: store}, nil
}

// Record appends a new session for identityID and returns it.
func (r *Recorder) Record(ctx context.Context, identityID, providerTag, ip, userAgent string) (Session, error) {
	if identityID == "" {
		return Session{}, errors.New("session requires an identity")
	}

	sess := Session{
		ID:         uuid.NewString(),
		IdentityID: identityID,
		Provider:   providerTag,
		IP:         ip,
		UserAgent:  userAgent,
		StartedAt:  time.Now().UTC(),
	}

	if err := r.store.Append(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// End marks the session ended now.
func (r *Recorder) End(ctx context.Context, sessionID string) error {
	return r.store.End(ctx, sessionID, time.Now().UTC())
}

// Sessions returns identityID's recorded sessions ordered by start time.
func (r *Recorder) Sessions(ctx context.Context, identityID string) ([]Session, error) {
	return r.store.ListByIdentity(ctx, identityID)
}
