// Package service holds the client-side session logic for Trainly.
//
// SessionManager owns the session snapshot (current identity, initialized
// and loading flags, last user-facing error). It reconciles a stored token
// with the identity service once at startup, runs login, registration and
// logout, and notifies subscribers of every change.
//
// The manager is built explicitly by the application root and passed to
// whatever presents it; there is no package-level instance.
package service
