// Package common contains shared constants and small helpers used across
// authdash components.
package common

// DefaultBasePath is the path prefix of the remote authentication API.
const DefaultBasePath = "/api/auth"

// TokenMetadataKey is the durable storage key holding the bearer token.
// Absence of the key means the client is anonymous.
const TokenMetadataKey = "authToken"

// AuthorizationHeaderName carries the bearer credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName carries the per-request correlation id.
const RequestIDHeaderName = "X-Request-ID"
