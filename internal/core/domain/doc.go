// Package domain defines the core domain models for Trainly clients.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - Identity: the resolved user identity returned by the identity service
//   - SessionState: a snapshot of the client session (user, flags, error)
//   - Errors: domain error codes and the identity service APIError
package domain
