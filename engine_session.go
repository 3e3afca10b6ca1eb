package authcore

import (
	"context"
	"errors"

	"github.com/holasoymalva/authcore/session"
)

// EndSession marks the session ended. Unknown IDs return
// session.ErrNotFound unchanged; a store outage is reported as
// ErrStoreUnavailable.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	if e == nil || e.recorder == nil {
		return newError(KindConfig, "engine not initialized", nil)
	}
	if err := e.recorder.End(ctx, sessionID); err != nil {
		if errors.Is(err, session.ErrStoreUnavailable) {
			return newError(KindStoreUnavailable, "session store unavailable", err)
		}
		return err
	}
	e.metricInc(MetricSessionEnded)
	e.emitAudit(ctx, auditEventSessionEnded, true, "", "", sessionID, nil, nil)
	return nil
}

// Sessions lists the identity's recorded sessions, oldest first. An
// identity with no sessions yields an empty slice, not an error.
func (e *Engine) Sessions(ctx context.Context, identityID string) ([]Session, error) {
	if e == nil || e.recorder == nil {
		return nil, newError(KindConfig, "engine not initialized", nil)
	}
	sessions, err := e.recorder.Sessions(ctx, identityID)
	if err != nil {
		if errors.Is(err, session.ErrStoreUnavailable) {
			return nil, newError(KindStoreUnavailable, "session store unavailable", err)
		}
		return nil, err
	}
	return sessions, nil
}
