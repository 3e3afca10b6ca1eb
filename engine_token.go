package authcore

import (
	"errors"
	"time"

	"github.com/holasoymalva/authcore/token"
)

// IssueToken signs a token for the given claims without running a login.
// A non-positive ttl falls back to the configured default. Intended for
// service-to-service tokens and tests; interactive flows should go
// through Login.
func (e *Engine) IssueToken(claims Claims, ttl time.Duration) (string, error) {
	if e == nil || e.tokens == nil {
		return "", newError(KindConfig, "engine not initialized", nil)
	}
	signed, err := e.tokens.Issue(claims, ttl)
	if err != nil {
		return "", err
	}
	e.metricInc(MetricTokenIssued)
	return signed, nil
}

// VerifyToken checks the signature and time window of a token and returns
// its claims. Failures are classified as ErrInvalidSignature,
// ErrTokenExpired or ErrTokenMalformed.
func (e *Engine) VerifyToken(tokenStr string) (Claims, error) {
	if e == nil || e.tokens == nil {
		return Claims{}, newError(KindConfig, "engine not initialized", nil)
	}

	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricVerifyLatency, time.Since(start)) }()
	}

	claims, err := e.tokens.Verify(tokenStr)
	if err != nil {
		return Claims{}, e.translateTokenError(err)
	}
	e.metricInc(MetricTokenVerified)
	return claims, nil
}

// DecodeToken parses the claims without verifying the signature or time
// window. The result must never be used to authorize anything.
func (e *Engine) DecodeToken(tokenStr string) (Claims, error) {
	if e == nil || e.tokens == nil {
		return Claims{}, newError(KindConfig, "engine not initialized", nil)
	}
	claims, err := e.tokens.Decode(tokenStr)
	if err != nil {
		return Claims{}, newError(KindMalformedToken, "malformed token", err)
	}
	return claims, nil
}

// translateTokenError converts token package sentinels into the exported
// taxonomy, bumping the matching counter. Order matters: expiry is only
// reported for tokens whose signature already checked out.
func (e *Engine) translateTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		e.metricInc(MetricTokenExpired)
		return newError(KindTokenExpired, "token expired", err)
	case errors.Is(err, token.ErrSignatureInvalid):
		e.metricInc(MetricTokenSignatureInvalid)
		return newError(KindInvalidSignature, "token signature invalid", err)
	default:
		e.metricInc(MetricTokenMalformed)
		return newError(KindMalformedToken, "malformed token", err)
	}
}
