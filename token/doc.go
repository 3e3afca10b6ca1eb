// Package token issues, verifies, and decodes the signed credentials carried
// by authenticated callers, using HMAC-SHA256 in JWS compact serialization.
package token
