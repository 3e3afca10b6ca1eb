package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/holasoymalva/authcore/provider"
	"github.com/holasoymalva/authcore/session"
	"github.com/holasoymalva/authcore/token"
)

// Audit event types emitted by the engine.
const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventIdentityProvisioned = "identity_provisioned"
	auditEventSessionRecordFailed = "session_record_failed"
	auditEventSessionEnded        = "session_ended"
	auditEventRolesReloaded       = "roles_reloaded"
	auditEventRolesReloadRejected = "roles_reload_rejected"
)

// AuditErrorCode is a stable machine-readable label for the cause of a
// failed operation. Codes appear in AuditEvent.Error and never in errors
// returned to callers, so enriching them carries no enumeration risk.
type AuditErrorCode string

const (
	auditErrInvalidCredential   AuditErrorCode = "invalid_credential"
	auditErrUnsupportedProvider AuditErrorCode = "unsupported_provider"
	auditErrExternalProvider    AuditErrorCode = "external_provider_failure"
	auditErrStoreUnavailable    AuditErrorCode = "store_unavailable"
	auditErrTokenExpired        AuditErrorCode = "token_expired"
	auditErrTokenSignature      AuditErrorCode = "invalid_signature"
	auditErrTokenMalformed      AuditErrorCode = "malformed_token"
	auditErrPermissionDenied    AuditErrorCode = "permission_denied"
	auditErrSessionNotFound     AuditErrorCode = "session_not_found"
	auditErrConfig              AuditErrorCode = "invalid_config"
	auditErrInternal            AuditErrorCode = "internal_error"
)

// auditErrorCode maps an error to its audit code. Subpackage sentinels are
// matched first because the engine translates them into the exported
// taxonomy after auditing, not before.
func auditErrorCode(err error) AuditErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, provider.ErrInvalidCredential):
		return auditErrInvalidCredential
	case errors.Is(err, provider.ErrUnsupportedProvider):
		return auditErrUnsupportedProvider
	case errors.Is(err, provider.ErrExternalProvider):
		return auditErrExternalProvider
	case errors.Is(err, session.ErrNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, session.ErrStoreUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, token.ErrExpired):
		return auditErrTokenExpired
	case errors.Is(err, token.ErrSignatureInvalid):
		return auditErrTokenSignature
	case errors.Is(err, token.ErrMalformed):
		return auditErrTokenMalformed
	}
	switch Classify(err) {
	case KindInvalidCredential, KindAuthentication:
		return auditErrInvalidCredential
	case KindUnsupportedProvider:
		return auditErrUnsupportedProvider
	case KindExternalProvider:
		return auditErrExternalProvider
	case KindStoreUnavailable:
		return auditErrStoreUnavailable
	case KindTokenExpired:
		return auditErrTokenExpired
	case KindInvalidSignature:
		return auditErrTokenSignature
	case KindMalformedToken:
		return auditErrTokenMalformed
	case KindPermissionDenied:
		return auditErrPermissionDenied
	case KindConfig:
		return auditErrConfig
	}
	return auditErrInternal
}

// emitAudit builds and dispatches one audit event. It is a no-op when the
// dispatcher is disabled, and metadataBuilder is only invoked when an event
// will actually be emitted.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, identityID, providerTag, sessionID string, err error, metadataBuilder func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		IdentityID: identityID,
		Provider:   providerTag,
		SessionID:  sessionID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
	}
	if err != nil {
		event.Error = string(auditErrorCode(err))
	}
	if metadataBuilder != nil {
		event.Metadata = metadataBuilder()
	}

	e.audit.Emit(ctx, event)
}
