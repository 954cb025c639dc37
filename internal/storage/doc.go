// Package storage persists the session bearer token.
//
// A Backend stores opaque values under string keys and reports failures.
// TokenStore sits on top and never fails toward its caller: backend errors
// are logged (token redacted), counted, and degrade to "no token".
//
// Backends:
//
//   - file: sealed credentials file (default)
//   - badger: Badger v3 database directory
//   - memory: process-local, nothing written to disk
//   - none: always unavailable
package storage
