// Package token provides small helpers for handling bearer tokens and key
// material without exposing them.
//
//   - GenerateBytes: CSPRNG bytes for keys and salts
//   - Fingerprint: short, non-reversible identifier for a token, safe to
//     print in status output and logs
package token
