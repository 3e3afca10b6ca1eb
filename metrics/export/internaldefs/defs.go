package internaldefs

import (
	authcore "github.com/holasoymalva/authcore"
)

// CounterDef binds a core counter ID to its exported name and help text.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every core counter in snapshot order. Both exporters
// iterate this slice so their output stays name-for-name identical.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricTokenIssued, Name: "authcore_token_issued_total", Help: "Issued tokens."},
	{ID: authcore.MetricTokenVerified, Name: "authcore_token_verified_total", Help: "Tokens verified successfully."},
	{ID: authcore.MetricTokenExpired, Name: "authcore_token_expired_total", Help: "Tokens rejected as expired."},
	{ID: authcore.MetricTokenSignatureInvalid, Name: "authcore_token_signature_invalid_total", Help: "Tokens rejected for signature mismatch."},
	{ID: authcore.MetricTokenMalformed, Name: "authcore_token_malformed_total", Help: "Tokens rejected as structurally malformed."},
	{ID: authcore.MetricPermissionAllowed, Name: "authcore_permission_allowed_total", Help: "Permission checks that granted access."},
	{ID: authcore.MetricPermissionDenied, Name: "authcore_permission_denied_total", Help: "Permission checks that denied access."},
	{ID: authcore.MetricSessionRecorded, Name: "authcore_session_recorded_total", Help: "Session records appended on login."},
	{ID: authcore.MetricSessionRecordFailure, Name: "authcore_session_record_failure_total", Help: "Session record attempts that failed without failing the login."},
	{ID: authcore.MetricSessionEnded, Name: "authcore_session_ended_total", Help: "Session end markers written."},
	{ID: authcore.MetricIdentityProvisioned, Name: "authcore_identity_provisioned_total", Help: "Identities auto-provisioned on first federated login."},
	{ID: authcore.MetricProviderUnsupported, Name: "authcore_provider_unsupported_total", Help: "Logins naming an unregistered provider tag."},
	{ID: authcore.MetricExternalProviderFailure, Name: "authcore_external_provider_failure_total", Help: "Federated upstream failures."},
	{ID: authcore.MetricRoleTableReload, Name: "authcore_role_table_reload_total", Help: "Successful role table reloads."},
}

// HistogramDefs lists the core latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricVerifyLatency, Name: "authcore_verify_latency_seconds", Help: "Token verification latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus "le"
// label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in OTel
// instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed bucket
// count, so exporters never index past what the core produced.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
