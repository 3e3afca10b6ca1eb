package authcore

import "github.com/holasoymalva/authcore/token"

// SecurityReport summarizes the engine's effective security posture for
// operators and startup logs. It reads only configuration and the live
// role table; nothing here touches a store.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil || e.resolver == nil {
		return SecurityReport{}
	}

	table := e.resolver.Table()

	return SecurityReport{
		SigningAlgorithm: token.Algorithm,
		TokenTTL:         e.config.Token.DefaultTTL,
		TokenLeeway:      e.config.Token.Leeway,
		Issuer:           e.config.Token.Issuer,
		Providers:        cloneStrings(e.config.Providers.Enabled),
		RoleCount:        table.Len(),
		WildcardRoles:    table.WildcardRoles(),
		SessionRetention: e.config.Session.Retention,
		AuditEnabled:     e.config.Audit.Enabled,
		MetricsEnabled:   e.config.Metrics.Enabled,
		Argon2:           e.passwordParams,
	}
}
