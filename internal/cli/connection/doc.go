// Package connection talks to the Trainly identity service.
//
//   - http.go: JSON-over-HTTP transport (rate limit, request IDs, metrics,
//     error decoding)
//   - identity.go: login, register, current user and token clearing
//   - jwt.go: best-effort expiry display for JWT bearer tokens
package connection
