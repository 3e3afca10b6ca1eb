package authcore

import (
	"context"
	"fmt"
)

// CheckPermission reports whether the named role grants the permission,
// walking role inheritance and honoring the "*" wildcard. A denial is
// returned as ErrPermissionDenied; an unknown role denies rather than
// errors, so a stale token cannot learn which roles exist.
func (e *Engine) CheckPermission(role, perm string) error {
	if e == nil || e.resolver == nil {
		return newError(KindConfig, "engine not initialized", nil)
	}
	if e.resolver.Check(role, perm) {
		e.metricInc(MetricPermissionAllowed)
		return nil
	}
	e.metricInc(MetricPermissionDenied)
	return newError(KindPermissionDenied, fmt.Sprintf("role %q does not grant %q", role, perm), nil)
}

// CheckAllPermissions requires every listed permission. An empty list is
// vacuously granted. The returned error names the first missing
// permission only.
func (e *Engine) CheckAllPermissions(role string, perms []string) error {
	if e == nil || e.resolver == nil {
		return newError(KindConfig, "engine not initialized", nil)
	}
	for _, perm := range perms {
		if !e.resolver.Check(role, perm) {
			e.metricInc(MetricPermissionDenied)
			return newError(KindPermissionDenied, fmt.Sprintf("role %q does not grant %q", role, perm), nil)
		}
	}
	e.metricInc(MetricPermissionAllowed)
	return nil
}

// ReloadRoles replaces the role table atomically. The new definitions go
// through the same compilation as at build time, so an inheritance cycle
// or duplicate role is rejected as ErrConfig and the previous table stays
// live. In-flight checks finish against whichever table they started on.
func (e *Engine) ReloadRoles(roles []Role) error {
	if e == nil || e.resolver == nil {
		return newError(KindConfig, "engine not initialized", nil)
	}
	if err := e.resolver.Swap(roles); err != nil {
		wrapped := newError(KindConfig, "role table rejected", err)
		e.emitAudit(context.Background(), auditEventRolesReloadRejected, false, "", "", "", wrapped, func() map[string]string {
			return map[string]string{"detail": err.Error()}
		})
		return wrapped
	}
	e.metricInc(MetricRoleTableReload)
	e.emitAudit(context.Background(), auditEventRolesReloaded, true, "", "", "", nil, func() map[string]string {
		return map[string]string{"roles": fmt.Sprintf("%d", e.resolver.Table().Len())}
	})
	return nil
}
