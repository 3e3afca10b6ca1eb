// Package session records login sessions as an append-only journal.
//
// A [Session] is written once at login by the [Recorder] and later marked
// ended; records are never rewritten beyond that single end marker. The
// journal exists for audit and introspection, not for request-path
// authorization: token verification never consults it.
//
// Two [Store] implementations are provided. [MemoryStore] keeps the journal
// in process memory for tests and single-process embedding. [RedisStore]
// persists records as JSON with a configurable retention TTL and a per-identity
// index set.
//
// # Architecture boundaries
//
// This package owns session records and their persistence. Deciding whether
// a failed write aborts a login is the Engine's call, not the store's.
//
// # What this package must NOT do
//
//   - Gate token verification on journal state.
//   - Import any other authcore package.
//   - Store credential material in session records.
package session
