// Package memory provides a process-local key/value store.
//
// It backs the "memory" token backend (tests and --ephemeral runs):
// values live only as long as the process and are never written to disk.
package memory
