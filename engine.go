package authcore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/holasoymalva/authcore/identity"
	"github.com/holasoymalva/authcore/permission"
	"github.com/holasoymalva/authcore/provider"
	"github.com/holasoymalva/authcore/session"
	"github.com/holasoymalva/authcore/token"
)

// Engine is the runtime object that all authentication and authorization
// flows pass through. Build one with a Builder; the zero value is not
// usable.
//
// All methods are safe for concurrent use. The engine owns no goroutines
// except the audit dispatcher, which Close shuts down.
type Engine struct {
	config   Config
	tokens   *token.Manager
	resolver *permission.Resolver
	registry *provider.Registry
	recorder *session.Recorder
	metrics  *Metrics
	audit    *auditDispatcher
	logger   *slog.Logger

	// passwordParams mirrors the argon2id parameters of the engine-owned
	// hasher. Zero when the caller supplied their own PasswordVerifier.
	passwordParams PasswordConfigReport
}

// Login verifies a credential against the named provider, issues a token
// and records a session.
//
// Every verification failure is reported to the caller as the generic
// ErrAuthentication regardless of cause. The cause goes to the audit
// trail and the metrics counters, never into the returned error, so a
// caller probing the API cannot distinguish an unknown account from a
// wrong password or an upstream outage.
//
// Session recording is best effort: when the session store is down the
// login still succeeds and LoginResult.SessionID is empty.
func (e *Engine) Login(ctx context.Context, providerTag string, credential Credential) (LoginResult, error) {
	if e == nil || e.registry == nil {
		return LoginResult{}, newError(KindConfig, "engine not initialized", nil)
	}

	verifier, err := e.registry.Get(providerTag)
	if err != nil {
		e.metricInc(MetricProviderUnsupported)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", providerTag, "", err, nil)
		return LoginResult{}, newError(KindAuthentication, "authentication failed", nil)
	}

	ident, err := verifier.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, provider.ErrExternalProvider) {
			e.metricInc(MetricExternalProviderFailure)
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", providerTag, "", err, nil)
		return LoginResult{}, newError(KindAuthentication, "authentication failed", nil)
	}

	// Claims carry the role name only. Permissions are resolved per check
	// against the live role table, so a reload takes effect for tokens
	// already in circulation.
	claims := Claims{Subject: ident.ID, Role: ident.Role}
	signed, err := e.tokens.Issue(claims, 0)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, ident.ID, providerTag, "", err, func() map[string]string {
			return map[string]string{"stage": "token_issue"}
		})
		return LoginResult{}, newError(KindAuthentication, "authentication failed", nil)
	}
	e.metricInc(MetricTokenIssued)

	sessionID := ""
	sess, err := e.recorder.Record(ctx, ident.ID, ident.Provider, clientIPFromContext(ctx), userAgentFromContext(ctx))
	if err != nil {
		e.metricInc(MetricSessionRecordFailure)
		e.emitAudit(ctx, auditEventSessionRecordFailed, false, ident.ID, providerTag, "", err, nil)
		if e.logger != nil {
			e.logger.Warn("session record failed, login continues",
				"identity_id", ident.ID,
				"provider", providerTag,
				"error", err)
		}
	} else {
		sessionID = sess.ID
		e.metricInc(MetricSessionRecorded)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, ident.ID, providerTag, sessionID, nil, func() map[string]string {
		return map[string]string{"role": ident.Role}
	})

	return LoginResult{
		Token:     signed,
		SessionID: sessionID,
		Identity:  ident.Public(),
	}, nil
}

// onProvision runs whenever a federated verifier creates an identity on
// first sight. Wired by the Builder.
func (e *Engine) onProvision(ctx context.Context, ident identity.Identity) {
	e.metricInc(MetricIdentityProvisioned)
	e.emitAudit(ctx, auditEventIdentityProvisioned, true, ident.ID, ident.Provider, "", nil, func() map[string]string {
		return map[string]string{
			"external_id": ident.ExternalID,
			"role":        ident.Role,
		}
	})
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms. Safe on a nil engine.
func (e *Engine) MetricsSnapshot() Snapshot {
	if e == nil {
		return Snapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full. Safe on a nil engine.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Close()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
