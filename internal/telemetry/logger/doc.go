// Package logger provides structured logging for Trainly clients.
//
// This package wraps log/slog:
//
//   - logger.go: Logger interface, handler configuration, dynamic level
//   - context.go: Context-aware logging with request IDs
//   - redact.go: Sensitive data redaction (tokens, passwords)
//
// CLI processes log to stderr in text format at warn level unless
// verbose output is requested.
package logger
