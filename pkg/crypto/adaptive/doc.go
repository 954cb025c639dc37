// Package adaptive seals small secrets at rest.
//
// A Sealer picks AES-256-GCM where the CPU accelerates AES and
// ChaCha20-Poly1305 elsewhere. Sealed output records which algorithm
// produced it, so a file written on one machine opens on another.
//
// Envelope layout:
//
//	version(1) | cipher id(1) | nonce | ciphertext+tag
//
// Keys are 32 bytes, either random or derived from a passphrase with
// Argon2id (DeriveKey). SubKey separates purposes under one master key.
//
// Usage:
//
//	s, err := adaptive.NewSealer(key)
//	sealed, err := s.Seal(plaintext, aad)
//	plaintext, err := s.Open(sealed, aad)
package adaptive
