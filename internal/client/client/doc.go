// Package client contains client-side building blocks for authdash.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     remote auth API: Login, Register, GetCurrentUser and ListUsers.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient) rooted at a
//     base path (default /api/auth). Calls are side-effect free with respect
//     to local state and are never retried.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failed call returns one of two typed errors:
//   - *AuthError: a single message, taken from the response body field
//     "message" or a per-call default.
//   - *ValidationFailure: per-field errors, returned only by Register when the
//     server answers with an "errors" array.
//
// Common conditions are also exposed as sentinels that callers can match with
// errors.Is through AuthError.Unwrap: ErrUnavailable, ErrUnauthorized.
package client
