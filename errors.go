package authcore

import (
	"errors"
	"fmt"
)

// ErrorKind labels the failure classes the engine reports. Callers that
// translate errors into transport responses (HTTP status codes, gRPC codes)
// switch on the kind instead of matching individual sentinel values.
type ErrorKind uint8

const (
	// KindUnknown is the zero kind for errors that did not come from authcore.
	KindUnknown ErrorKind = iota
	// KindConfig covers construction-time and reload-time failures. A config
	// error is never produced while serving a request.
	KindConfig
	// KindAuthentication is the uniform login failure. Every verifier failure
	// collapses to this kind so a caller cannot tell a missing account from a
	// wrong password or a rejected assertion.
	KindAuthentication
	// KindInvalidCredential is raised below the engine boundary by the local
	// verifier. The engine itself never returns it from Login.
	KindInvalidCredential
	// KindPermissionDenied means the caller authenticated fine but the role
	// does not grant the permission.
	KindPermissionDenied
	// KindTokenExpired means the token verified structurally but its expiry
	// has passed.
	KindTokenExpired
	// KindInvalidSignature means the token's MAC did not match.
	KindInvalidSignature
	// KindMalformedToken means the compact form could not be parsed at all.
	KindMalformedToken
	// KindUnsupportedProvider means the login named a provider tag that is
	// not registered.
	KindUnsupportedProvider
	// KindExternalProvider means a federated upstream failed or returned an
	// unusable profile.
	KindExternalProvider
	// KindStoreUnavailable means a backing store (identity or session) could
	// not be reached.
	KindStoreUnavailable
)

// String returns the kind's stable name, suitable for logs and metrics labels.
func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuthentication:
		return "authentication"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindPermissionDenied:
		return "permission_denied"
	case KindTokenExpired:
		return "token_expired"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindMalformedToken:
		return "malformed_token"
	case KindUnsupportedProvider:
		return "unsupported_provider"
	case KindExternalProvider:
		return "external_provider"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Error is the tagged error type returned across the engine boundary. Two
// Errors match under errors.Is when their kinds are equal, so callers compare
// against the package sentinels without caring which code path produced the
// value.
type Error struct {
	Kind  ErrorKind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap exposes the underlying cause, if any. The cause is kept for
// operator-facing logs; it is not part of the comparison identity.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches by kind. errors.Is(err, ErrTokenExpired) holds for every Error
// carrying KindTokenExpired regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// Sentinel values for errors.Is comparisons. Each is the canonical Error of
// its kind; engine methods return fresh Errors of the same kind, optionally
// wrapping an internal cause.
var (
	// ErrConfig reports invalid construction input: missing secret, cyclic
	// role table, unusable provider wiring.
	ErrConfig = &Error{Kind: KindConfig, msg: "invalid configuration"}
	// ErrAuthentication is the only failure Login returns for bad
	// credentials. It deliberately carries no detail.
	ErrAuthentication = &Error{Kind: KindAuthentication, msg: "authentication failed"}
	// ErrInvalidCredential mirrors provider.ErrInvalidCredential for callers
	// that work below the engine boundary.
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential, msg: "invalid credential"}
	// ErrPermissionDenied reports a failed authorization check. Distinct from
	// ErrAuthentication so callers can map 401 vs 403.
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, msg: "permission denied"}
	// ErrTokenExpired reports a structurally valid, correctly signed token
	// whose expiry has passed.
	ErrTokenExpired = &Error{Kind: KindTokenExpired, msg: "token expired"}
	// ErrInvalidSignature reports a MAC mismatch.
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature, msg: "invalid token signature"}
	// ErrTokenMalformed reports a token that is not three base64url segments
	// or whose segments do not decode.
	ErrTokenMalformed = &Error{Kind: KindMalformedToken, msg: "malformed token"}
	// ErrUnsupportedProvider reports a login against a tag with no registered
	// verifier.
	ErrUnsupportedProvider = &Error{Kind: KindUnsupportedProvider, msg: "unsupported provider"}
	// ErrExternalProvider reports a federated upstream failure.
	ErrExternalProvider = &Error{Kind: KindExternalProvider, msg: "external provider failure"}
	// ErrStoreUnavailable reports an unreachable identity or session backend.
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable, msg: "backing store unavailable"}
)

// Classify extracts the ErrorKind from any error. Non-authcore errors
// classify as KindUnknown.
func Classify(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
